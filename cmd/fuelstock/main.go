package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/config"
	"github.com/frotacloud/fuelstock/internal/logger"
	"github.com/frotacloud/fuelstock/internal/migration"
	"github.com/frotacloud/fuelstock/internal/observability"
	"github.com/frotacloud/fuelstock/internal/seed"
	"github.com/frotacloud/fuelstock/internal/sequence"
	"github.com/frotacloud/fuelstock/internal/server"
	"github.com/frotacloud/fuelstock/pkg/db"
	"github.com/frotacloud/fuelstock/pkg/locks"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(locks.NewKeyedMutex),
		db.Module,
		migration.Module,
		seed.Module,
		sequence.Module,

		// HTTP surface plus the domain modules it serves
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
