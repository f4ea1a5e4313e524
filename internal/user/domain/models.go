package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User is an actor reference: the person recording a supply or driving the
// vehicle. Supply events keep a restricted reference to it.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrEmailExists  = errors.New("email_exists")
	ErrNotFound     = errors.New("not_found")
	ErrInvalidID    = errors.New("invalid_id")
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]User, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
