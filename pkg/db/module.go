package db

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/internal/config"
	obslogger "github.com/smallbiznis/permitdesk/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Provide(NewSnowflakeNode),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	GormLog   obslogger.GormLoggerConfig
	Log       *zap.Logger
}

// New opens the configured database with query logging, tracing and pool metrics attached.
func New(p Params) (*gorm.DB, error) {
	dialect, err := Dialect(p.Config)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialect, &gorm.Config{
		Logger:  obslogger.NewGormLogger(p.GormLog),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", Driver(p.Config), err)
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(p.Config.DBName))); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}
	if err := conn.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          p.Config.DBName,
		RefreshInterval: 15,
	})); err != nil {
		return nil, fmt.Errorf("register metrics plugin: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(p.Config.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(p.Config.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(p.Config.DBConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(p.Config.DBConnMaxIdleTime) * time.Second)

	log := p.Log.Named("db")
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			log.Info("database connected", zap.String("driver", Driver(p.Config)))
			return nil
		},
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	return conn, nil
}

func NewSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
