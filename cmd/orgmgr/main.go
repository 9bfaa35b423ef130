package main

import (
	"go.uber.org/fx"

	"github.com/D0Nater/organization-manager/internal/migration"
	"github.com/D0Nater/organization-manager/internal/observability"
	"github.com/D0Nater/organization-manager/internal/server"
	"github.com/D0Nater/organization-manager/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure. config.Module rides inside server.Module.
		observability.Module,
		db.Module,

		// HTTP surface and schema bootstrap.
		server.Module,
		migration.Module,
	)
	app.Run()
}
