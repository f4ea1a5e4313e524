package repository

import (
	"context"
	"time"

	"github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, tank *domain.Tank) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tanks (id, name, capacity, current_level, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tank.ID,
		tank.Name,
		tank.Capacity,
		tank.CurrentLevel,
		tank.Active,
		tank.CreatedAt,
		tank.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Tank, error) {
	var t domain.Tank
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, capacity, current_level, active, created_at, updated_at
		 FROM tanks WHERE id = ?`,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, includeArchived bool) ([]domain.Tank, error) {
	stmt := db.WithContext(ctx).Model(&domain.Tank{})
	if !includeArchived {
		stmt = stmt.Where("active = ?", true)
	}

	var items []domain.Tank
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tank *domain.Tank) error {
	if tank == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tanks
		 SET name = ?, capacity = ?, current_level = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		tank.Name,
		tank.Capacity,
		tank.CurrentLevel,
		tank.Active,
		tank.UpdatedAt,
		tank.ID,
	).Error
}

func (r *repo) DebitLevel(ctx context.Context, db *gorm.DB, id int64, amount decimal.Decimal, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tanks
		 SET current_level = current_level - ?, updated_at = ?
		 WHERE id = ? AND current_level >= ?`,
		amount,
		now,
		id,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) CreditLevel(ctx context.Context, db *gorm.DB, id int64, amount decimal.Decimal, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tanks
		 SET current_level = current_level + ?, updated_at = ?
		 WHERE id = ? AND current_level + ? <= capacity`,
		amount,
		now,
		id,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
