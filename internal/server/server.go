package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/config"
	obsmiddleware "github.com/frotacloud/fuelstock/internal/observability/logger"
	obsmetrics "github.com/frotacloud/fuelstock/internal/observability/metrics"
	obstracing "github.com/frotacloud/fuelstock/internal/observability/tracing"
	"github.com/frotacloud/fuelstock/internal/supply"
	supplydomain "github.com/frotacloud/fuelstock/internal/supply/domain"
	"github.com/frotacloud/fuelstock/internal/tank"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	"github.com/frotacloud/fuelstock/internal/user"
	userdomain "github.com/frotacloud/fuelstock/internal/user/domain"
	"github.com/frotacloud/fuelstock/internal/vehicle"
	vehicledomain "github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	tank.Module,
	vehicle.Module,
	user.Module,
	supply.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Log:             log.Named("http"),
		Debug:           !cfg.IsProduction(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	genID      *snowflake.Node
	tankSvc    tankdomain.Service
	supplySvc  supplydomain.Service
	vehicleSvc vehicledomain.Service
	userSvc    userdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	GenID      *snowflake.Node
	TankSvc    tankdomain.Service
	SupplySvc  supplydomain.Service
	VehicleSvc vehicledomain.Service
	UserSvc    userdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		genID:      p.GenID,
		tankSvc:    p.TankSvc,
		supplySvc:  p.SupplySvc,
		vehicleSvc: p.VehicleSvc,
		userSvc:    p.UserSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Tanks --------
	api.GET("/tanks", s.ListTanks)
	api.POST("/tanks", s.ActorRequired(), s.CreateTank)
	api.GET("/tanks/:id", s.GetTankByID)
	api.POST("/tanks/:id/refill", s.ActorRequired(), s.RefillTank)
	api.POST("/tanks/:id/adjust", s.ActorRequired(), s.AdjustTank)
	api.POST("/tanks/:id/archive", s.ActorRequired(), s.ArchiveTank)

	// -------- Supplies --------
	api.GET("/supplies", s.ListSupplies)
	api.POST("/supplies", s.ActorRequired(), s.RecordSupply)
	api.GET("/supplies/:id", s.GetSupplyByID)

	// -------- Vehicles --------
	api.GET("/vehicles", s.ListVehicles)
	api.POST("/vehicles", s.ActorRequired(), s.CreateVehicle)
	api.GET("/vehicles/:id", s.GetVehicleByID)
	api.POST("/vehicles/:id/archive", s.ActorRequired(), s.ArchiveVehicle)

	// -------- Users --------
	api.GET("/users", s.ListUsers)
	api.POST("/users", s.ActorRequired(), s.CreateUser)
	api.GET("/users/:id", s.GetUserByID)
}
