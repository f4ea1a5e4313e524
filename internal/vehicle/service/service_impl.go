package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"github.com/frotacloud/fuelstock/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("vehicle.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	unit := domain.OdometerUnit(strings.ToLower(strings.TrimSpace(req.OdometerUnit)))
	switch unit {
	case "":
		unit = domain.OdometerUnitKilometers
	case domain.OdometerUnitKilometers, domain.OdometerUnitHours:
	default:
		return nil, domain.ErrInvalidOdometerUnit
	}

	var plate *string
	if req.LicensePlate != nil {
		trimmed := strings.ToUpper(strings.TrimSpace(*req.LicensePlate))
		if trimmed != "" {
			plate = &trimmed
		}
	}

	now := time.Now().UTC()
	v := &domain.Vehicle{
		ID:           s.genID.Generate().Int64(),
		Name:         name,
		LicensePlate: plate,
		OdometerUnit: unit,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, v); err != nil {
		return nil, db.WrapPersistence("create vehicle", err)
	}

	resp := toResponse(v)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db, req.IncludeArchived)
	if err != nil {
		return nil, db.WrapPersistence("list vehicles", err)
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	vehicleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || vehicleID == 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, vehicleID.Int64())
	if err != nil {
		return nil, db.WrapPersistence("load vehicle", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	vehicleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || vehicleID == 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, vehicleID.Int64())
	if err != nil {
		return nil, db.WrapPersistence("load vehicle", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, db.WrapPersistence("archive vehicle", err)
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(v *domain.Vehicle) domain.Response {
	return domain.Response{
		ID:           snowflake.ID(v.ID).String(),
		Name:         v.Name,
		LicensePlate: v.LicensePlate,
		OdometerUnit: string(v.OdometerUnit),
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
