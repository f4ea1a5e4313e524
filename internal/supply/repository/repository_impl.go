package repository

import (
	"context"
	"time"

	"github.com/frotacloud/fuelstock/internal/supply/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, event *domain.SupplyEvent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO supply_events
		 (id, reference, tank_id, vehicle_id, occurred_at, odometer, quantity, unit_price,
		  total_amount, recorded_by, driver_id, notes, metadata, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Reference,
		event.TankID,
		event.VehicleID,
		event.OccurredAt,
		event.Odometer,
		event.Quantity,
		event.UnitPrice,
		event.TotalAmount,
		event.RecordedBy,
		event.DriverID,
		event.Notes,
		event.Metadata,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.SupplyEvent, error) {
	var e domain.SupplyEvent
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&e).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.SupplyEvent, error) {
	stmt := db.WithContext(ctx).Model(&domain.SupplyEvent{})
	if filter.TankID != 0 {
		stmt = stmt.Where("tank_id = ?", filter.TankID)
	}
	if filter.VehicleID != 0 {
		stmt = stmt.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		stmt = stmt.Where("occurred_at >= ?", time.Unix(*filter.From, 0).UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("occurred_at < ?", time.Unix(*filter.To, 0).UTC())
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var items []domain.SupplyEvent
	if err := stmt.Order("occurred_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
