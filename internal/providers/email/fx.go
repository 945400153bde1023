package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/providers/awsconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	log = log.Named("providers.email")

	switch cfg.Email.Provider {
	case "smtp":
		log.Info("using smtp email provider", zap.String("host", cfg.Email.SMTPHost))
		return NewSMTP(Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
		}), nil
	case "ses", "":
		awsConfig, err := awsconfig.Load(context.Background(), cfg.AWS)
		if err != nil {
			return nil, err
		}
		log.Info("using ses email provider", zap.String("region", cfg.AWS.Region))
		return NewSES(ses.NewFromConfig(awsConfig), cfg.Email.From), nil
	case "noop", "none":
		log.Warn("email delivery disabled")
		return &NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Email.Provider)
	}
}
