package vehicle

import (
	"github.com/frotacloud/fuelstock/internal/vehicle/repository"
	"github.com/frotacloud/fuelstock/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
