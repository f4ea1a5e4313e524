package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, tank *Tank) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Tank, error)
	FindAll(ctx context.Context, db *gorm.DB, includeArchived bool) ([]Tank, error)
	Update(ctx context.Context, db *gorm.DB, tank *Tank) error

	// DebitLevel applies a guarded conditional decrement: the update only
	// lands when current_level >= amount at commit time. Returns false when
	// a concurrent writer consumed the stock first.
	DebitLevel(ctx context.Context, db *gorm.DB, id int64, amount decimal.Decimal, now time.Time) (bool, error)

	// CreditLevel is the symmetric guarded increment against capacity.
	CreditLevel(ctx context.Context, db *gorm.DB, id int64, amount decimal.Decimal, now time.Time) (bool, error)
}
