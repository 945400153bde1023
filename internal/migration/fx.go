package migration

import (
	"context"
	"strings"

	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")

		switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
		case "", "postgres", "postgresql":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		default:
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}
		log.Info("schema ready", zap.String("dialect", cfg.DBType))

		return seed.EnsureParks(context.Background(), conn, cfg.SnowflakeNode)
	}),
)
