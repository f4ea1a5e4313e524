package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCapacity     = errors.New("invalid_capacity")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInsufficientStock   = errors.New("insufficient_stock")
	ErrCapacityExceeded    = errors.New("capacity_exceeded")
	ErrNegativeLevel       = errors.New("negative_level")
	ErrNonPositiveCapacity = errors.New("non_positive_capacity")
	ErrOverCapacity        = errors.New("over_capacity")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
)

// InsufficientStockError reports a rejected debit with enough context for an
// operator-facing message. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	TankName  string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in tank %q: available %s L, required %s L",
		e.TankName, e.Available.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// CapacityExceededError reports a rejected credit that would overflow the tank.
type CapacityExceededError struct {
	TankName       string
	Requested      decimal.Decimal
	ResultingLevel decimal.Decimal
	Capacity       decimal.Decimal
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("cannot add %s L to tank %q: level would reach %s L, exceeding capacity of %s L",
		e.Requested.StringFixed(2), e.TankName, e.ResultingLevel.StringFixed(2), e.Capacity.StringFixed(2))
}

func (e *CapacityExceededError) Is(target error) bool { return target == ErrCapacityExceeded }

// OverCapacityError reports an invariant violation found by ValidateBounds.
type OverCapacityError struct {
	TankName string
	Level    decimal.Decimal
	Capacity decimal.Decimal
}

func (e *OverCapacityError) Error() string {
	return fmt.Sprintf("current level (%s L) of tank %q exceeds its capacity (%s L)",
		e.Level.StringFixed(2), e.TankName, e.Capacity.StringFixed(2))
}

func (e *OverCapacityError) Is(target error) bool { return target == ErrOverCapacity }
