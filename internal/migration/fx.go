package migration

import (
	"github.com/smallbiznis/meatline/internal/config"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	productdomain "github.com/smallbiznis/meatline/internal/product/domain"
	"github.com/smallbiznis/meatline/internal/seed"
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
			err := conn.AutoMigrate(
				&productdomain.Product{},
				&customerdomain.Customer{},
				&invoicedomain.Invoice{},
				&invoicedomain.LineItem{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
