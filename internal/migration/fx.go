package migration

import (
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/config"
	invoicedomain "github.com/vendorly/invoicedesk/internal/invoice/domain"
	"github.com/vendorly/invoicedesk/internal/seed"
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
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite development setups rely on gorm's schema sync.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn, cfg)
	}),
)
