package repository

import (
	"context"

	"github.com/frotacloud/fuelstock/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, name, email, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, nil
	}
	return &u, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var items []domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, active, created_at, updated_at
		 FROM users ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
