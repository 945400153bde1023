package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewCatalogHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	SnowflakeNode int64

	Agency AgencyConfig
	AWS    AWSConfig
	Email  EmailConfig
	SMS    SMSConfig
	Redis  RedisConfig
	Intake IntakeConfig
	Notify NotifyConfig

	CatalogWatch bool
}

// AgencyConfig describes the issuing agency printed on permits and invoices.
type AgencyConfig struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
	S3PresignTTL    time.Duration
}

type EmailConfig struct {
	Provider     string
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

type SMSConfig struct {
	Enabled  bool
	SenderID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type IntakeConfig struct {
	RatePerMinute float64
	Burst         int
}

type NotifyConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:          getenv("APP_SERVICE", "permitdesk"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      getenv("ENVIRONMENT", "development"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		HTTPReadTimeout:  getenvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getenvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "permitdesk"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "permitdesk.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		SnowflakeNode: getenvInt64("SNOWFLAKE_NODE", 1),

		Agency: AgencyConfig{
			Name:    getenv("AGENCY_NAME", "State Parks Special Use Permits"),
			Address: getenv("AGENCY_ADDRESS", ""),
			Email:   getenv("AGENCY_EMAIL", "permits@example.org"),
			Phone:   getenv("AGENCY_PHONE", ""),
		},
		AWS: AWSConfig{
			Region:          getenv("AWS_REGION", "us-east-1"),
			AccessKeyID:     strings.TrimSpace(getenv("AWS_ACCESS_KEY_ID", "")),
			SecretAccessKey: strings.TrimSpace(getenv("AWS_SECRET_ACCESS_KEY", "")),
			S3Bucket:        strings.TrimSpace(getenv("S3_BUCKET", "")),
			S3Endpoint:      strings.TrimSpace(getenv("S3_ENDPOINT", "")),
			S3PresignTTL:    getenvDuration("S3_PRESIGN_TTL", 15*time.Minute),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getenv("EMAIL_PROVIDER", "ses")),
			From:         getenv("EMAIL_FROM", "permits@example.org"),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 25),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
		},
		SMS: SMSConfig{
			Enabled:  getenvBool("SMS_ENABLED", true),
			SenderID: getenv("SMS_SENDER_ID", ""),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Intake: IntakeConfig{
			RatePerMinute: getenvFloat("INTAKE_RATE_PER_MINUTE", 6),
			Burst:         getenvInt("INTAKE_BURST", 3),
		},
		Notify: NotifyConfig{
			Workers:   getenvInt("NOTIFY_WORKERS", 2),
			QueueSize: getenvInt("NOTIFY_QUEUE_SIZE", 256),
			Timeout:   getenvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		CatalogWatch: getenvBool("CATALOG_WATCH", false),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
