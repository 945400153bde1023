// Package storage keeps insurance certificates in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Provider interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var ErrDisabled = errors.New("storage_disabled")

// S3API is the part of the S3 client the provider calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest mirrors the SDK's presigned request so tests can fake the presigner.
type PresignedRequest struct {
	URL string
}

type S3Provider struct {
	client    S3API
	presigner Presigner
	bucket    string
}

func NewS3(client S3API, presigner Presigner, bucket string) *S3Provider {
	return &S3Provider{client: client, presigner: presigner, bucket: bucket}
}

func (p *S3Provider) Put(ctx context.Context, key string, contentType string, body io.Reader) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	return err
}

func (p *S3Provider) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

type sdkPresigner struct {
	client *s3.PresignClient
}

func (p sdkPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// DisabledProvider is used when no bucket is configured.
type DisabledProvider struct{}

func (DisabledProvider) Put(ctx context.Context, key string, contentType string, body io.Reader) error {
	return ErrDisabled
}

func (DisabledProvider) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrDisabled
}
