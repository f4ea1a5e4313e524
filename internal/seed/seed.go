package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/config"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	userdomain "github.com/frotacloud/fuelstock/internal/user/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Stock *config.StockConfigHolder
}

// Run provisions the default tank and admin user on an empty database so a
// fresh install can record supplies immediately.
func Run(p Params) error {
	ctx := context.Background()
	log := p.Log.Named("seed")

	var tankCount int64
	if err := p.DB.WithContext(ctx).Model(&tankdomain.Tank{}).Count(&tankCount).Error; err != nil {
		return err
	}
	if tankCount == 0 {
		stock := p.Stock.Get()
		now := time.Now().UTC()
		t := &tankdomain.Tank{
			ID:           p.GenID.Generate().Int64(),
			Name:         stock.DefaultTankName,
			Capacity:     decimal.NewFromFloat(stock.DefaultTankCapacity),
			CurrentLevel: decimal.Zero,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := p.DB.WithContext(ctx).Create(t).Error; err != nil {
			return err
		}
		log.Info("default tank created",
			zap.String("name", t.Name),
			zap.String("capacity", t.Capacity.String()),
		)
	}

	var userCount int64
	if err := p.DB.WithContext(ctx).Model(&userdomain.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		now := time.Now().UTC()
		u := &userdomain.User{
			ID:        p.GenID.Generate().Int64(),
			Name:      "Administrator",
			Email:     "admin@localhost",
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := p.DB.WithContext(ctx).Create(u).Error; err != nil {
			return err
		}
		log.Info("admin user created", zap.String("email", u.Email))
	}

	return nil
}

var Module = fx.Module("seed",
	fx.Invoke(Run),
)
