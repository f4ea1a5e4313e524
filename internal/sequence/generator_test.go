package sequence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceDB(t *testing.T) *gorm.DB {
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

	if err := db.AutoMigrate(&Sequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextStartsAtOneAndIncrements(t *testing.T) {
	db := setupSequenceDB(t)
	gen := New(nil)
	ctx := context.Background()

	first, err := gen.Next(ctx, db, "fuel.supply")
	require.NoError(t, err)
	assert.Equal(t, "fuel.supply/00001", first)

	second, err := gen.Next(ctx, db, "fuel.supply")
	require.NoError(t, err)
	assert.Equal(t, "fuel.supply/00002", second)
}

func TestNextKeysAreIndependent(t *testing.T) {
	db := setupSequenceDB(t)
	gen := New(nil)
	ctx := context.Background()

	_, err := gen.Next(ctx, db, "fuel.supply")
	require.NoError(t, err)

	other, err := gen.Next(ctx, db, "fuel.transfer")
	require.NoError(t, err)
	assert.Equal(t, "fuel.transfer/00001", other)
}

func TestNextRolledBackValueIsReused(t *testing.T) {
	db := setupSequenceDB(t)
	gen := New(nil)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		value, err := gen.Next(ctx, tx, "fuel.supply")
		require.NoError(t, err)
		assert.Equal(t, "fuel.supply/00001", value)
		return assert.AnError
	})
	require.Error(t, err)

	// The aborted transaction never published its reference, so the next
	// caller gets the same value.
	value, err := gen.Next(ctx, db, "fuel.supply")
	require.NoError(t, err)
	assert.Equal(t, "fuel.supply/00001", value)
}
