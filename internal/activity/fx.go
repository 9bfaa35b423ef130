package activity

import (
	"go.uber.org/fx"

	"github.com/D0Nater/organization-manager/internal/activity/repository"
	"github.com/D0Nater/organization-manager/internal/activity/service"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
