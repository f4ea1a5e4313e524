package repository

import (
	"context"

	"github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vehicles (id, name, license_plate, odometer_unit, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		vehicle.ID,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.OdometerUnit,
		vehicle.Active,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, license_plate, odometer_unit, active, created_at, updated_at
		 FROM vehicles WHERE id = ?`,
		id,
	).Scan(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, includeArchived bool) ([]domain.Vehicle, error) {
	stmt := db.WithContext(ctx).Model(&domain.Vehicle{})
	if !includeArchived {
		stmt = stmt.Where("active = ?", true)
	}

	var items []domain.Vehicle
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, vehicle *domain.Vehicle) error {
	if vehicle == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE vehicles
		 SET name = ?, license_plate = ?, odometer_unit = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.OdometerUnit,
		vehicle.Active,
		vehicle.UpdatedAt,
		vehicle.ID,
	).Error
}
