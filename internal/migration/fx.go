package migration

import (
	alertdomain "github.com/sitepulse/sitepulse/internal/alert/domain"
	auditdomain "github.com/sitepulse/sitepulse/internal/audit/domain"
	"github.com/sitepulse/sitepulse/internal/config"
	monitoringdomain "github.com/sitepulse/sitepulse/internal/monitoring/domain"
	notificationdomain "github.com/sitepulse/sitepulse/internal/notification/domain"
	"github.com/sitepulse/sitepulse/internal/seed"
	userdomain "github.com/sitepulse/sitepulse/internal/user/domain"
	websitedomain "github.com/sitepulse/sitepulse/internal/website/domain"
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
			// sqlite/mysql dev setups skip golang-migrate and let gorm
			// build the schema.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&websitedomain.Website{},
				&auditdomain.Audit{},
				&monitoringdomain.Config{},
				&alertdomain.Alert{},
				&notificationdomain.Notification{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
