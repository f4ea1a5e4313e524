package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/sequence"
	"github.com/frotacloud/fuelstock/internal/supply/domain"
	supplyrepo "github.com/frotacloud/fuelstock/internal/supply/repository"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	tankrepo "github.com/frotacloud/fuelstock/internal/tank/repository"
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

type countingTankRepo struct {
	tankdomain.Repository
	finds atomic.Int64
}

func (r *countingTankRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*tankdomain.Tank, error) {
	r.finds.Add(1)
	return r.Repository.FindByID(ctx, db, id)
}

type failingSupplyRepo struct {
	domain.Repository
}

func (r *failingSupplyRepo) Create(ctx context.Context, db *gorm.DB, event *domain.SupplyEvent) error {
	return errors.New("disk full")
}

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	tankRepo *countingTankRepo
}

func setupSupplyService(t *testing.T, opts ...func(*Params)) *fixture {
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

	if err := db.AutoMigrate(&tankdomain.Tank{}, &domain.SupplyEvent{}, &sequence.Sequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	counting := &countingTankRepo{Repository: tankrepo.Provide()}
	params := Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      supplyrepo.Provide(),
		TankRepo:  counting,
		Sequences: sequence.New(nil),
		TankLocks: locks.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	return &fixture{
		svc:      New(params),
		db:       db,
		node:     node,
		tankRepo: counting,
	}
}

func (f *fixture) seedTank(t *testing.T, capacity, level string) *tankdomain.Tank {
	t.Helper()
	now := time.Now().UTC()
	tank := &tankdomain.Tank{
		ID:           f.node.Generate().Int64(),
		Name:         "Main Tank",
		Capacity:     decimal.RequireFromString(capacity),
		CurrentLevel: decimal.RequireFromString(level),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(tank).Error)
	return tank
}

func (f *fixture) tankLevel(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	var tank tankdomain.Tank
	require.NoError(t, f.db.Where("id = ?", id).Take(&tank).Error)
	return tank.CurrentLevel
}

func (f *fixture) eventCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&domain.SupplyEvent{}).Count(&count).Error)
	return count
}

func (f *fixture) recordRequest(tank *tankdomain.Tank, quantity, unitPrice string) domain.RecordRequest {
	return domain.RecordRequest{
		TankID:     snowflake.ID(tank.ID).String(),
		VehicleID:  f.node.Generate().String(),
		RecordedBy: f.node.Generate().String(),
		Quantity:   decimal.RequireFromString(quantity),
		UnitPrice:  decimal.RequireFromString(unitPrice),
	}
}

func TestRecordSupplyDebitsTank(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "1000")

	resp, err := f.svc.Record(context.Background(), f.recordRequest(tank, "500", "5.20"))

	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("2600")))
	assert.Equal(t, "draft", resp.Status)
	assert.NotEmpty(t, resp.Reference)
	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("500")))
	assert.Equal(t, int64(1), f.eventCount(t))
}

func TestRecordSupplyAssignsSequentialReferences(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "1000")
	ctx := context.Background()

	first, err := f.svc.Record(ctx, f.recordRequest(tank, "100", "5"))
	require.NoError(t, err)
	second, err := f.svc.Record(ctx, f.recordRequest(tank, "100", "5"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Contains(t, second.Reference, "00002")
}

func TestRecordSupplyInsufficientStock(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "300")

	_, err := f.svc.Record(context.Background(), f.recordRequest(tank, "500", "5.20"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, tankdomain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "300.00")
	assert.Contains(t, err.Error(), "500.00")
	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("300")))
	assert.Equal(t, int64(0), f.eventCount(t))
}

func TestRecordSupplyRejectionIsRepeatable(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "300")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Record(ctx, f.recordRequest(tank, "500", "5.20"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, tankdomain.ErrInsufficientStock))
	}

	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("300")))
	assert.Equal(t, int64(0), f.eventCount(t))
}

func TestRecordSupplyValidatesBeforeTankAccess(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "1000")
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.RecordRequest
		want error
	}{
		{
			name: "zero quantity",
			req: domain.RecordRequest{
				TankID:     snowflake.ID(tank.ID).String(),
				VehicleID:  f.node.Generate().String(),
				RecordedBy: f.node.Generate().String(),
				Quantity:   decimal.Zero,
				UnitPrice:  decimal.RequireFromString("5.20"),
			},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			req: domain.RecordRequest{
				TankID:     snowflake.ID(tank.ID).String(),
				VehicleID:  f.node.Generate().String(),
				RecordedBy: f.node.Generate().String(),
				Quantity:   decimal.RequireFromString("-10"),
				UnitPrice:  decimal.RequireFromString("5.20"),
			},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "negative unit price",
			req: domain.RecordRequest{
				TankID:     snowflake.ID(tank.ID).String(),
				VehicleID:  f.node.Generate().String(),
				RecordedBy: f.node.Generate().String(),
				Quantity:   decimal.RequireFromString("10"),
				UnitPrice:  decimal.RequireFromString("-1"),
			},
			want: domain.ErrInvalidUnitPrice,
		},
		{
			name: "malformed tank id",
			req: domain.RecordRequest{
				TankID:     "not-a-tank",
				VehicleID:  f.node.Generate().String(),
				RecordedBy: f.node.Generate().String(),
				Quantity:   decimal.RequireFromString("10"),
				UnitPrice:  decimal.RequireFromString("5.20"),
			},
			want: domain.ErrInvalidTank,
		},
		{
			name: "missing actor",
			req: domain.RecordRequest{
				TankID:    snowflake.ID(tank.ID).String(),
				VehicleID: f.node.Generate().String(),
				Quantity:  decimal.RequireFromString("10"),
				UnitPrice: decimal.RequireFromString("5.20"),
			},
			want: domain.ErrInvalidActor,
		},
		{
			name: "unknown status",
			req: domain.RecordRequest{
				TankID:     snowflake.ID(tank.ID).String(),
				VehicleID:  f.node.Generate().String(),
				RecordedBy: f.node.Generate().String(),
				Quantity:   decimal.RequireFromString("10"),
				UnitPrice:  decimal.RequireFromString("5.20"),
				Status:     "approved",
			},
			want: domain.ErrInvalidStatus,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.tankRepo.finds.Load()
			_, err := f.svc.Record(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, f.tankRepo.finds.Load(), "invalid input must be rejected before any tank read")
		})
	}

	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, int64(0), f.eventCount(t))
}

func TestRecordSupplyUnknownTank(t *testing.T) {
	f := setupSupplyService(t)

	_, err := f.svc.Record(context.Background(), domain.RecordRequest{
		TankID:     f.node.Generate().String(),
		VehicleID:  f.node.Generate().String(),
		RecordedBy: f.node.Generate().String(),
		Quantity:   decimal.RequireFromString("10"),
		UnitPrice:  decimal.RequireFromString("5.20"),
	})
	assert.ErrorIs(t, err, domain.ErrTankNotFound)
}

func TestRecordSupplyRollsBackDebitWhenInsertFails(t *testing.T) {
	f := setupSupplyService(t, func(p *Params) {
		p.Repo = &failingSupplyRepo{Repository: p.Repo}
	})
	tank := f.seedTank(t, "6000", "1000")

	_, err := f.svc.Record(context.Background(), f.recordRequest(tank, "500", "5.20"))

	require.Error(t, err)
	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("1000")), "failed insert must roll the debit back")
	assert.Equal(t, int64(0), f.eventCount(t))
}

func TestConcurrentRecordsNeverOverdraw(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "1000")
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	var successes atomic.Int64
	var insufficient atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Record(ctx, f.recordRequest(tank, "300", "5"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, tankdomain.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), successes.Load(), "only three 300 L debits fit into 1000 L")
	assert.Equal(t, int64(workers-3), insufficient.Load())
	assert.True(t, f.tankLevel(t, tank.ID).Equal(decimal.RequireFromString("100")))
	assert.Equal(t, int64(3), f.eventCount(t))
}

func TestListSuppliesFilters(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "5000")
	other := f.seedTank(t, "2000", "2000")
	ctx := context.Background()

	_, err := f.svc.Record(ctx, f.recordRequest(tank, "100", "5"))
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, f.recordRequest(tank, "200", "5"))
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, f.recordRequest(other, "50", "5"))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byTank, err := f.svc.List(ctx, domain.ListRequest{TankID: snowflake.ID(tank.ID).String()})
	require.NoError(t, err)
	assert.Len(t, byTank, 2)

	limited, err := f.svc.List(ctx, domain.ListRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.svc.List(ctx, domain.ListRequest{Status: "approved"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetSupply(t *testing.T) {
	f := setupSupplyService(t)
	tank := f.seedTank(t, "6000", "1000")
	ctx := context.Background()

	notes := "after-hours refuel"
	req := f.recordRequest(tank, "75.5", "6.10")
	req.Notes = &notes
	req.Metadata = map[string]any{"pump": "2"}

	created, err := f.svc.Record(ctx, req)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Reference, got.Reference)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("75.5")))
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)

	_, err = f.svc.Get(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
