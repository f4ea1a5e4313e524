package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, event *SupplyEvent) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*SupplyEvent, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]SupplyEvent, error)
}

type ListFilter struct {
	TankID    int64
	VehicleID int64
	Status    SupplyStatus
	From      *int64 // unix seconds, inclusive
	To        *int64 // unix seconds, exclusive
	Limit     int
}
