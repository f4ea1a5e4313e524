package migration

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/frotacloud/fuelstock/internal/config"
	"github.com/frotacloud/fuelstock/internal/sequence"
	supplydomain "github.com/frotacloud/fuelstock/internal/supply/domain"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	userdomain "github.com/frotacloud/fuelstock/internal/user/domain"
	vehicledomain "github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run applies the schema. Postgres goes through versioned SQL migrations;
// other dialects (sqlite for local runs and tests, mysql) fall back to
// AutoMigrate since the SQL files use postgres types.
func Run(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.DBType == "postgres" {
		return runVersioned(db, log)
	}
	return runAutoMigrate(db, log)
}

func runVersioned(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	log.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runAutoMigrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&tankdomain.Tank{},
		&userdomain.User{},
		&vehicledomain.Vehicle{},
		&sequence.Sequence{},
		&supplydomain.SupplyEvent{},
	); err != nil {
		return err
	}
	log.Info("database schema synced")
	return nil
}
