package sms

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/providers/awsconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	log = log.Named("providers.sms")
	if !cfg.SMS.Enabled {
		log.Warn("sms delivery disabled")
		return DisabledProvider{}, nil
	}

	awsConfig, err := awsconfig.Load(context.Background(), cfg.AWS)
	if err != nil {
		return nil, err
	}
	return NewSNS(sns.NewFromConfig(awsConfig), cfg.SMS.SenderID), nil
}
