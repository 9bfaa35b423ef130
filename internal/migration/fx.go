package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	activitydomain "github.com/D0Nater/organization-manager/internal/activity/domain"
	buildingdomain "github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/internal/config"
	organizationdomain "github.com/D0Nater/organization-manager/internal/organization/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The versioned SQL targets postgres. Other dialects exist for
		// local runs and take the schema straight from the models.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&buildingdomain.Building{},
				&activitydomain.Activity{},
				&organizationdomain.Organization{},
				&organizationdomain.OrganizationActivity{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
