package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/frotacloud/fuelstock/internal/tank/repository"
	"github.com/frotacloud/fuelstock/pkg/locks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupTankService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	if err := db.AutoMigrate(&domain.Tank{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     mustNode(t),
		Repo:      repository.Provide(),
		TankLocks: locks.NewKeyedMutex(),
	})
	return svc, db
}

func TestCreateTankValidatesInput(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "  ", Capacity: decimal.RequireFromString("6000")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Main Tank", Capacity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidCapacity)

	over := decimal.RequireFromString("7000")
	_, err = svc.Create(ctx, domain.CreateRequest{
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString("6000"),
		InitialLevel: &over,
	})
	assert.True(t, errors.Is(err, domain.ErrOverCapacity))
}

func TestCreateAndGetTank(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	level := decimal.RequireFromString("1000")
	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString("6000"),
		InitialLevel: &level,
	})
	require.NoError(t, err)
	assert.True(t, created.AvailablePercentage.Equal(decimal.RequireFromString("16.67")))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.CurrentLevel.Equal(level))
}

func TestRefillTank(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	level := decimal.RequireFromString("1000")
	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString("6000"),
		InitialLevel: &level,
	})
	require.NoError(t, err)

	refilled, err := svc.Refill(ctx, domain.RefillRequest{ID: created.ID, Quantity: decimal.RequireFromString("2500")})
	require.NoError(t, err)
	assert.True(t, refilled.CurrentLevel.Equal(decimal.RequireFromString("3500")))
}

func TestRefillOverCapacityRejected(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	level := decimal.RequireFromString("5800")
	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString("6000"),
		InitialLevel: &level,
	})
	require.NoError(t, err)

	_, err = svc.Refill(ctx, domain.RefillRequest{ID: created.ID, Quantity: decimal.RequireFromString("500")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))

	// The rejected refill must leave the stored level untouched.
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentLevel.Equal(level))
}

func TestRefillUnknownTank(t *testing.T) {
	svc, _ := setupTankService(t)

	_, err := svc.Refill(context.Background(), domain.RefillRequest{
		ID:       "123456789",
		Quantity: decimal.RequireFromString("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustRevalidatesBounds(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	level := decimal.RequireFromString("4000")
	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString("6000"),
		InitialLevel: &level,
	})
	require.NoError(t, err)

	// Shrinking capacity below the current level must fail.
	smaller := decimal.RequireFromString("3000")
	_, err = svc.Adjust(ctx, domain.AdjustRequest{ID: created.ID, Capacity: &smaller})
	assert.True(t, errors.Is(err, domain.ErrOverCapacity))

	// A consistent correction is accepted.
	newLevel := decimal.RequireFromString("2500")
	adjusted, err := svc.Adjust(ctx, domain.AdjustRequest{ID: created.ID, Capacity: &smaller, CurrentLevel: &newLevel})
	require.NoError(t, err)
	assert.True(t, adjusted.Capacity.Equal(smaller))
	assert.True(t, adjusted.CurrentLevel.Equal(newLevel))
}

func TestArchiveTankHidesFromDefaultList(t *testing.T) {
	svc, _ := setupTankService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:     "Backup Tank",
		Capacity: decimal.RequireFromString("2000"),
	})
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	visible, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(ctx, domain.ListRequest{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
