package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/providers/awsconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.storage",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	log = log.Named("providers.storage")
	if cfg.AWS.S3Bucket == "" {
		log.Warn("insurance document storage disabled, S3_BUCKET is empty")
		return DisabledProvider{}, nil
	}

	awsConfig, err := awsconfig.Load(context.Background(), cfg.AWS)
	if err != nil {
		return nil, err
	}
	client := NewClient(awsConfig, cfg.AWS.S3Endpoint)
	log.Info("using s3 storage", zap.String("bucket", cfg.AWS.S3Bucket))
	return NewS3(client, sdkPresigner{client: s3.NewPresignClient(client)}, cfg.AWS.S3Bucket), nil
}

// NewClient builds an S3 client; a custom endpoint (MinIO, B2) switches to path-style URLs.
func NewClient(awsConfig aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}
