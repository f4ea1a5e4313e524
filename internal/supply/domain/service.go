package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Record atomically creates a supply event and debits the referenced
	// tank; on any failure nothing is persisted and the tank is unchanged.
	Record(ctx context.Context, req RecordRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

var (
	ErrInvalidTank       = errors.New("invalid_tank")
	ErrInvalidVehicle    = errors.New("invalid_vehicle")
	ErrInvalidActor      = errors.New("invalid_actor")
	ErrInvalidDriver     = errors.New("invalid_driver")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidUnitPrice  = errors.New("invalid_unit_price")
	ErrInvalidOdometer   = errors.New("invalid_odometer")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidReference  = errors.New("invalid_reference")
	ErrTankNotFound      = errors.New("tank_not_found")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidTimeRange  = errors.New("invalid_time_range")
)

// RecordRequest carries the acting identity explicitly; the service never
// consults ambient state for it.
type RecordRequest struct {
	TankID     string
	VehicleID  string
	RecordedBy string
	DriverID   *string
	Reference  string
	OccurredAt *time.Time
	Odometer   *decimal.Decimal
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Notes      *string
	Metadata   map[string]any
	Status     string
}

type ListRequest struct {
	TankID    string
	VehicleID string
	Status    string
	From      *time.Time
	To        *time.Time
	Limit     int
}

type Response struct {
	ID          string           `json:"id"`
	Reference   string           `json:"reference"`
	TankID      string           `json:"tank_id"`
	VehicleID   string           `json:"vehicle_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Odometer    *decimal.Decimal `json:"odometer,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	RecordedBy  string           `json:"recorded_by"`
	DriverID    *string          `json:"driver_id,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}
