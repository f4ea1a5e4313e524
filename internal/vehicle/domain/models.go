package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// OdometerUnit distinguishes road vehicles (km) from stationary equipment
// metered in engine hours.
type OdometerUnit string

const (
	OdometerUnitKilometers OdometerUnit = "km"
	OdometerUnitHours      OdometerUnit = "hours"
)

// Vehicle is the fleet subject a supply event is recorded against.
type Vehicle struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	LicensePlate *string      `json:"license_plate,omitempty" gorm:"type:text"`
	OdometerUnit OdometerUnit `json:"odometer_unit" gorm:"type:text;not null;default:'km'"`
	Active       bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Vehicle) TableName() string { return "vehicles" }

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidOdometerUnit = errors.New("invalid_odometer_unit")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Vehicle, error)
	FindAll(ctx context.Context, db *gorm.DB, includeArchived bool) ([]Vehicle, error)
	Update(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name         string  `json:"name"`
	LicensePlate *string `json:"license_plate"`
	OdometerUnit string  `json:"odometer_unit"`
}

type ListRequest struct {
	IncludeArchived bool
}

type Response struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LicensePlate *string   `json:"license_plate,omitempty"`
	OdometerUnit string    `json:"odometer_unit"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
