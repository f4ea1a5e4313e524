package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SupplyStatus is stored data only: no transition rules are applied by the
// service. Reversing a recorded supply requires an explicit tank refill.
type SupplyStatus string

const (
	SupplyStatusDraft     SupplyStatus = "draft"
	SupplyStatusConfirmed SupplyStatus = "confirmed"
	SupplyStatusCancelled SupplyStatus = "cancelled"
)

func (s SupplyStatus) Valid() bool {
	switch s {
	case SupplyStatusDraft, SupplyStatusConfirmed, SupplyStatusCancelled:
		return true
	default:
		return false
	}
}

// SupplyEvent is one fuel consumption record. It exists only if the
// referenced tank was debited by Quantity in the same transaction that
// created it; the event itself is immutable history afterwards.
type SupplyEvent struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	Reference   string            `json:"reference" gorm:"type:text;not null;uniqueIndex:ux_supply_events_reference"`
	TankID      int64             `json:"tank_id" gorm:"not null;index"`
	VehicleID   int64             `json:"vehicle_id" gorm:"not null;index"`
	OccurredAt  time.Time         `json:"occurred_at" gorm:"not null;index"`
	Odometer    *decimal.Decimal  `json:"odometer,omitempty" gorm:"type:decimal(12,2)"`
	Quantity    decimal.Decimal   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	UnitPrice   decimal.Decimal   `json:"unit_price" gorm:"type:decimal(12,3);not null"`
	TotalAmount decimal.Decimal   `json:"total_amount" gorm:"type:decimal(14,3);not null"`
	RecordedBy  int64             `json:"recorded_by" gorm:"not null;index"`
	DriverID    *int64            `json:"driver_id,omitempty" gorm:"index"`
	Notes       *string           `json:"notes,omitempty" gorm:"type:text"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Status      SupplyStatus      `json:"status" gorm:"type:text;not null;default:'draft'"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SupplyEvent) TableName() string { return "supply_events" }
