package tank

import (
	"github.com/frotacloud/fuelstock/internal/tank/repository"
	"github.com/frotacloud/fuelstock/internal/tank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tank.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
