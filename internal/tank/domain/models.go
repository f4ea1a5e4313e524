package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tank is a bounded fuel inventory. CurrentLevel is mutated only through
// Credit and Debit; both keep 0 <= CurrentLevel <= Capacity.
type Tank struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"type:text;not null"`
	Capacity     decimal.Decimal `json:"capacity" gorm:"type:decimal(12,3);not null"`
	CurrentLevel decimal.Decimal `json:"current_level" gorm:"type:decimal(12,3);not null;default:0"`
	Active       bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tank) TableName() string { return "tanks" }

var oneHundred = decimal.NewFromInt(100)

// Credit adds fuel to the tank. The whole amount is applied or none of it.
func (t *Tank) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidQuantity
	}
	next := t.CurrentLevel.Add(amount)
	if next.GreaterThan(t.Capacity) {
		return &CapacityExceededError{
			TankName:       t.Name,
			Requested:      amount,
			ResultingLevel: next,
			Capacity:       t.Capacity,
		}
	}
	t.CurrentLevel = next
	return nil
}

// Debit removes fuel from the tank. The whole amount is applied or none of it.
func (t *Tank) Debit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidQuantity
	}
	if t.CurrentLevel.LessThan(amount) {
		return &InsufficientStockError{
			TankName:  t.Name,
			Available: t.CurrentLevel,
			Required:  amount,
		}
	}
	t.CurrentLevel = t.CurrentLevel.Sub(amount)
	return nil
}

// ValidateBounds checks the tank invariant after any field mutation,
// including administrative edits that bypass Credit/Debit.
func (t *Tank) ValidateBounds() error {
	if t.CurrentLevel.Sign() < 0 {
		return ErrNegativeLevel
	}
	if t.Capacity.Sign() <= 0 {
		return ErrNonPositiveCapacity
	}
	if t.CurrentLevel.GreaterThan(t.Capacity) {
		return &OverCapacityError{
			TankName: t.Name,
			Level:    t.CurrentLevel,
			Capacity: t.Capacity,
		}
	}
	return nil
}

// AvailablePercentage reports the fill level as a percentage of capacity.
// A zero capacity yields 0; it is unreachable while ValidateBounds holds.
func (t *Tank) AvailablePercentage() decimal.Decimal {
	if t.Capacity.Sign() <= 0 {
		return decimal.Zero
	}
	return t.CurrentLevel.Div(t.Capacity).Mul(oneHundred)
}
