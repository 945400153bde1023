package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger routes gorm statements through the context logger.
// Bound parameters are never logged since they carry applicant contact details.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gormlogger.ErrRecordNotFound)
	switch {
	case err != nil && l.cfg.Level >= gormlogger.Error && !(notFound && l.cfg.IgnoreRecordNotFound):
		l.query(ctx, fc, elapsed, err, zapcore.ErrorLevel)
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn:
		l.query(ctx, fc, elapsed, nil, zapcore.WarnLevel)
	case l.cfg.Level >= gormlogger.Info:
		l.query(ctx, fc, elapsed, nil, zapcore.DebugLevel)
	}
}

func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) message(ctx context.Context, level gormlogger.LogLevel, msg string, data []interface{}) {
	if l.cfg.Level < level {
		return
	}
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	log := FromContext(ctx)
	switch level {
	case gormlogger.Error:
		log.Error(msg, fields...)
	case gormlogger.Warn:
		log.Warn(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}

func (l *GormLogger) query(ctx context.Context, fc func() (string, int64), elapsed time.Duration, err error, level zapcore.Level) {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", operationFromSQL(sql)),
		zap.String("table", tableFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	if ce := FromContext(ctx).Check(level, "gorm.query"); ce != nil {
		ce.Write(fields...)
	}
}

func operationFromSQL(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		token = strings.Trim(token, "();")
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return token
		}
	}
	return "UNKNOWN"
}

// tableFromSQL returns the first table named after FROM, INTO or UPDATE.
func tableFromSQL(sql string) string {
	tokens := strings.Fields(sql)
	for i, token := range tokens {
		switch strings.ToUpper(token) {
		case "FROM", "INTO", "UPDATE":
			if i+1 >= len(tokens) {
				return ""
			}
			name := strings.Trim(tokens[i+1], "\"`();")
			if name == "" || strings.EqualFold(name, "SELECT") {
				continue
			}
			return name
		}
	}
	return ""
}

var _ gormlogger.Interface = (*GormLogger)(nil)
