package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/config"
	obsmetrics "github.com/frotacloud/fuelstock/internal/observability/metrics"
	"github.com/frotacloud/fuelstock/internal/sequence"
	"github.com/frotacloud/fuelstock/internal/supply/domain"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/frotacloud/fuelstock/pkg/db"
	"github.com/frotacloud/fuelstock/pkg/locks"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	TankRepo   tankdomain.Repository
	Sequences  *sequence.Generator
	TankLocks  *locks.KeyedMutex
	Stock      *config.StockConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	tankRepo   tankdomain.Repository
	sequences  *sequence.Generator
	tankLocks  *locks.KeyedMutex
	stock      *config.StockConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("supply.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		tankRepo:   p.TankRepo,
		sequences:  p.Sequences,
		tankLocks:  p.TankLocks,
		stock:      p.Stock,
		obsMetrics: p.ObsMetrics,
	}
}

// Record creates a supply event and debits the referenced tank in one
// transaction. Inputs are fully validated before any tank state is read,
// so a malformed request never observes or mutates inventory.
func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.Response, error) {
	tankID, err := parseID(req.TankID, domain.ErrInvalidTank)
	if err != nil {
		return nil, err
	}
	vehicleID, err := parseID(req.VehicleID, domain.ErrInvalidVehicle)
	if err != nil {
		return nil, err
	}
	actorID, err := parseID(req.RecordedBy, domain.ErrInvalidActor)
	if err != nil {
		return nil, err
	}

	var driverID *int64
	if req.DriverID != nil && strings.TrimSpace(*req.DriverID) != "" {
		id, err := parseID(*req.DriverID, domain.ErrInvalidDriver)
		if err != nil {
			return nil, err
		}
		driverID = &id
	}

	if req.Quantity.Sign() <= 0 {
		s.rejected("invalid_quantity")
		return nil, domain.ErrInvalidQuantity
	}
	if req.UnitPrice.Sign() < 0 {
		s.rejected("invalid_unit_price")
		return nil, domain.ErrInvalidUnitPrice
	}
	if req.Odometer != nil && req.Odometer.Sign() < 0 {
		s.rejected("invalid_odometer")
		return nil, domain.ErrInvalidOdometer
	}

	status := domain.SupplyStatusDraft
	if trimmed := strings.TrimSpace(req.Status); trimmed != "" {
		status = domain.SupplyStatus(strings.ToLower(trimmed))
		if !status.Valid() {
			s.rejected("invalid_status")
			return nil, domain.ErrInvalidStatus
		}
	}

	now := time.Now().UTC()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	unlock := s.tankLocks.Lock(req.TankID)
	defer unlock()

	event := &domain.SupplyEvent{
		ID:          s.genID.Generate().Int64(),
		TankID:      tankID,
		VehicleID:   vehicleID,
		OccurredAt:  occurredAt,
		Odometer:    req.Odometer,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TotalAmount: req.Quantity.Mul(req.UnitPrice),
		RecordedBy:  actorID,
		DriverID:    driverID,
		Notes:       normalizeNotes(req.Notes),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(req.Metadata) > 0 {
		event.Metadata = datatypes.JSONMap(req.Metadata)
	}

	var debited *tankdomain.Tank
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.tankRepo.FindByID(ctx, tx, tankID)
		if err != nil {
			return db.WrapPersistence("load tank", err)
		}
		if t == nil {
			return domain.ErrTankNotFound
		}

		if err := t.Debit(req.Quantity); err != nil {
			return err
		}

		ok, err := s.tankRepo.DebitLevel(ctx, tx, t.ID, req.Quantity, now)
		if err != nil {
			return db.WrapPersistence("debit tank", err)
		}
		if !ok {
			return s.freshStockError(ctx, tx, tankID, req.Quantity)
		}

		if strings.TrimSpace(req.Reference) != "" {
			event.Reference = strings.TrimSpace(req.Reference)
		} else {
			ref, err := s.sequences.Next(ctx, tx, config.SupplySequenceKey)
			if err != nil {
				return db.WrapPersistence("assign reference", err)
			}
			event.Reference = ref
		}

		if err := s.repo.Create(ctx, tx, event); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrInvalidReference
			}
			return db.WrapPersistence("create supply event", err)
		}

		debited = t
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, tankdomain.ErrInsufficientStock) {
			s.rejected("insufficient_stock")
		}
		return nil, txErr
	}

	s.log.Info("supply recorded",
		zap.String("reference", event.Reference),
		zap.String("tank_id", req.TankID),
		zap.String("vehicle_id", req.VehicleID),
		zap.String("quantity", event.Quantity.String()),
		zap.String("total_amount", event.TotalAmount.String()),
	)
	s.obsMetrics.IncSupplyRecorded()
	s.obsMetrics.SetTankLevel(debited.Name, debited.CurrentLevel.InexactFloat64(), debited.AvailablePercentage().InexactFloat64())
	s.warnLowLevel(debited)

	resp := toResponse(event)
	return &resp, nil
}

func (s *Service) warnLowLevel(t *tankdomain.Tank) {
	if s.stock == nil {
		return
	}
	threshold := decimal.NewFromFloat(s.stock.Get().LowLevelPercent)
	if threshold.Sign() <= 0 {
		return
	}
	if pct := t.AvailablePercentage(); pct.LessThan(threshold) {
		s.log.Warn("tank below low-level threshold",
			zap.String("tank", t.Name),
			zap.String("level_percent", pct.StringFixed(2)),
			zap.String("threshold_percent", threshold.StringFixed(2)),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	var filter domain.ListFilter

	if trimmed := strings.TrimSpace(req.TankID); trimmed != "" {
		id, err := parseID(trimmed, domain.ErrInvalidTank)
		if err != nil {
			return nil, err
		}
		filter.TankID = id
	}
	if trimmed := strings.TrimSpace(req.VehicleID); trimmed != "" {
		id, err := parseID(trimmed, domain.ErrInvalidVehicle)
		if err != nil {
			return nil, err
		}
		filter.VehicleID = id
	}
	if trimmed := strings.TrimSpace(req.Status); trimmed != "" {
		status := domain.SupplyStatus(strings.ToLower(trimmed))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if req.From != nil {
		from := req.From.Unix()
		filter.From = &from
	}
	if req.To != nil {
		to := req.To.Unix()
		filter.To = &to
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, domain.ErrInvalidTimeRange
	}
	filter.Limit = req.Limit

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, db.WrapPersistence("list supply events", err)
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	eventID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, db.WrapPersistence("load supply event", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

// freshStockError re-reads the tank after a lost guarded update so the
// returned error carries the level that actually defeated the debit.
func (s *Service) freshStockError(ctx context.Context, tx *gorm.DB, tankID int64, amount decimal.Decimal) error {
	fresh, err := s.tankRepo.FindByID(ctx, tx, tankID)
	if err != nil || fresh == nil {
		return tankdomain.ErrInsufficientStock
	}
	return &tankdomain.InsufficientStockError{
		TankName:  fresh.Name,
		Available: fresh.CurrentLevel,
		Required:  amount,
	}
}

func (s *Service) rejected(reason string) {
	s.obsMetrics.IncSupplyRejected(reason)
}

func toResponse(e *domain.SupplyEvent) domain.Response {
	resp := domain.Response{
		ID:          snowflake.ID(e.ID).String(),
		Reference:   e.Reference,
		TankID:      snowflake.ID(e.TankID).String(),
		VehicleID:   snowflake.ID(e.VehicleID).String(),
		OccurredAt:  e.OccurredAt,
		Odometer:    e.Odometer,
		Quantity:    e.Quantity,
		UnitPrice:   e.UnitPrice,
		TotalAmount: e.TotalAmount,
		RecordedBy:  snowflake.ID(e.RecordedBy).String(),
		Notes:       e.Notes,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
	if e.DriverID != nil {
		id := snowflake.ID(*e.DriverID).String()
		resp.DriverID = &id
	}
	if len(e.Metadata) > 0 {
		resp.Metadata = map[string]any(e.Metadata)
	}
	return resp
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(raw string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id.Int64(), nil
}
