package sequence

// Sequence is the persisted counter row backing Generator.
type Sequence struct {
	Key       string `gorm:"primaryKey;column:key;type:text"`
	LastValue int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }
