package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/frotacloud/fuelstock/internal/observability/metrics"
	"github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/frotacloud/fuelstock/pkg/db"
	"github.com/frotacloud/fuelstock/pkg/locks"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	TankLocks  *locks.KeyedMutex
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	tankLocks  *locks.KeyedMutex
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("tank.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		tankLocks:  p.TankLocks,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Capacity.Sign() <= 0 {
		return nil, domain.ErrInvalidCapacity
	}

	level := decimal.Zero
	if req.InitialLevel != nil {
		level = *req.InitialLevel
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	t := &domain.Tank{
		ID:           s.genID.Generate().Int64(),
		Name:         name,
		Capacity:     req.Capacity,
		CurrentLevel: level,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := t.ValidateBounds(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, s.db, t); err != nil {
		return nil, db.WrapPersistence("create tank", err)
	}

	s.publishLevel(t)
	resp := s.toResponse(t)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db, req.IncludeArchived)
	if err != nil {
		return nil, db.WrapPersistence("list tanks", err)
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	tankID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, tankID)
	if err != nil {
		return nil, db.WrapPersistence("load tank", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// Refill credits fuel into the tank. The guarded update keeps concurrent
// credits and debits from breaching capacity.
func (s *Service) Refill(ctx context.Context, req domain.RefillRequest) (*domain.Response, error) {
	tankID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if req.Quantity.Sign() <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	unlock := s.tankLocks.Lock(req.ID)
	defer unlock()

	var updated *domain.Tank
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.FindByID(ctx, tx, tankID)
		if err != nil {
			return db.WrapPersistence("load tank", err)
		}
		if t == nil {
			return domain.ErrNotFound
		}

		if err := t.Credit(req.Quantity); err != nil {
			return err
		}

		now := time.Now().UTC()
		ok, err := s.repo.CreditLevel(ctx, tx, t.ID, req.Quantity, now)
		if err != nil {
			return db.WrapPersistence("credit tank", err)
		}
		if !ok {
			return s.freshCapacityError(ctx, tx, tankID, req.Quantity)
		}

		t.UpdatedAt = now
		updated = t
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishLevel(updated)
	resp := s.toResponse(updated)
	return &resp, nil
}

// Adjust applies an administrative correction to capacity and/or level and
// re-validates the tank invariant before persisting.
func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (*domain.Response, error) {
	tankID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if req.Capacity == nil && req.CurrentLevel == nil {
		return nil, domain.ErrInvalidQuantity
	}

	unlock := s.tankLocks.Lock(req.ID)
	defer unlock()

	var updated *domain.Tank
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.FindByID(ctx, tx, tankID)
		if err != nil {
			return db.WrapPersistence("load tank", err)
		}
		if t == nil {
			return domain.ErrNotFound
		}

		if req.Capacity != nil {
			t.Capacity = *req.Capacity
		}
		if req.CurrentLevel != nil {
			t.CurrentLevel = *req.CurrentLevel
		}
		if err := t.ValidateBounds(); err != nil {
			return err
		}

		t.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, t); err != nil {
			return db.WrapPersistence("update tank", err)
		}
		updated = t
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("tank adjusted",
		zap.String("tank_id", req.ID),
		zap.String("capacity", updated.Capacity.String()),
		zap.String("current_level", updated.CurrentLevel.String()),
	)
	s.publishLevel(updated)
	resp := s.toResponse(updated)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	tankID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, tankID)
	if err != nil {
		return nil, db.WrapPersistence("load tank", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, db.WrapPersistence("archive tank", err)
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) freshCapacityError(ctx context.Context, tx *gorm.DB, tankID int64, amount decimal.Decimal) error {
	fresh, err := s.repo.FindByID(ctx, tx, tankID)
	if err != nil || fresh == nil {
		return domain.ErrCapacityExceeded
	}
	return &domain.CapacityExceededError{
		TankName:       fresh.Name,
		Requested:      amount,
		ResultingLevel: fresh.CurrentLevel.Add(amount),
		Capacity:       fresh.Capacity,
	}
}

func (s *Service) publishLevel(t *domain.Tank) {
	if t == nil {
		return
	}
	s.obsMetrics.SetTankLevel(t.Name, t.CurrentLevel.InexactFloat64(), t.AvailablePercentage().InexactFloat64())
}

func (s *Service) toResponse(t *domain.Tank) domain.Response {
	return domain.Response{
		ID:                  snowflake.ID(t.ID).String(),
		Name:                t.Name,
		Capacity:            t.Capacity,
		CurrentLevel:        t.CurrentLevel,
		AvailablePercentage: t.AvailablePercentage().Round(2),
		Active:              t.Active,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
