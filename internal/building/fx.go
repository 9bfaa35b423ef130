package building

import (
	"go.uber.org/fx"

	"github.com/D0Nater/organization-manager/internal/building/repository"
	"github.com/D0Nater/organization-manager/internal/building/service"
)

var Module = fx.Module("building.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
