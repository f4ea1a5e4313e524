package supply

import (
	"github.com/frotacloud/fuelstock/internal/supply/repository"
	"github.com/frotacloud/fuelstock/internal/supply/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supply.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
