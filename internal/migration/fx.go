package migration

import (
	"github.com/billcraft/billcraft/internal/config"
	invoicedomain "github.com/billcraft/billcraft/internal/invoice/domain"
	profiledomain "github.com/billcraft/billcraft/internal/profile/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite is the dev/test path; gorm derives the schema there,
		// including the composite unique index on (owner, invoice_number).
		return conn.AutoMigrate(
			&invoicedomain.Invoice{},
			&profiledomain.BusinessProfile{},
		)
	}),
)
