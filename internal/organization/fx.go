package organization

import (
	"go.uber.org/fx"

	"github.com/D0Nater/organization-manager/internal/organization/repository"
	"github.com/D0Nater/organization-manager/internal/organization/service"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(repository.NewAssociationRepository),
	fx.Provide(service.NewService),
)
