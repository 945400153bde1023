package observability

import (
	"time"

	"github.com/smallbiznis/permitdesk/internal/observability/logger"
	"github.com/smallbiznis/permitdesk/internal/observability/metrics"
	"github.com/smallbiznis/permitdesk/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideGormLoggerConfig,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(func(_ *sdktrace.TracerProvider) {}),
)

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func provideGormLoggerConfig(cfg Config) logger.GormLoggerConfig {
	out := logger.DefaultGormLoggerConfig()
	if cfg.Debug() {
		out.Level = gormlogger.Info
	}
	if cfg.GormSlowThresholdMS > 0 {
		out.SlowThreshold = time.Duration(cfg.GormSlowThresholdMS) * time.Millisecond
	}
	return out
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
	}
}
