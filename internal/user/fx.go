package user

import (
	"github.com/frotacloud/fuelstock/internal/user/repository"
	"github.com/frotacloud/fuelstock/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
