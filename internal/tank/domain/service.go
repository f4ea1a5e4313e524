package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Refill(ctx context.Context, req RefillRequest) (*Response, error)
	Adjust(ctx context.Context, req AdjustRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name         string           `json:"name"`
	Capacity     decimal.Decimal  `json:"capacity"`
	InitialLevel *decimal.Decimal `json:"initial_level"`
	Active       *bool            `json:"active"`
}

type ListRequest struct {
	IncludeArchived bool
}

// RefillRequest credits fuel back into a tank (stock intake or an explicit
// compensation for a recorded supply).
type RefillRequest struct {
	ID       string
	Quantity decimal.Decimal `json:"quantity"`
}

// AdjustRequest is an administrative correction of capacity and/or level;
// bounds are re-validated after the edit.
type AdjustRequest struct {
	ID           string
	Capacity     *decimal.Decimal `json:"capacity"`
	CurrentLevel *decimal.Decimal `json:"current_level"`
}

type Response struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Capacity            decimal.Decimal `json:"capacity"`
	CurrentLevel        decimal.Decimal `json:"current_level"`
	AvailablePercentage decimal.Decimal `json:"available_percentage"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
