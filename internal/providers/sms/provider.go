// Package sms delivers text messages through AWS SNS.
package sms

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type Provider interface {
	Send(ctx context.Context, phone string, body string) error
}

var (
	ErrNoPhone  = errors.New("sms_no_phone")
	ErrDisabled = errors.New("sms_disabled")
)

// SNSService is the part of the SNS client the provider calls.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSProvider struct {
	client   SNSService
	senderID string
}

func NewSNS(client SNSService, senderID string) *SNSProvider {
	return &SNSProvider{client: client, senderID: strings.TrimSpace(senderID)}
}

func (p *SNSProvider) Send(ctx context.Context, phone string, body string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return ErrNoPhone
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if p.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(p.senderID),
		}
	}

	_, err := p.client.Publish(ctx, input)
	return err
}

// NormalizePhone strips formatting and keeps a leading plus, e.g. "+1 (555) 010-0100" -> "+15550100100".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// DisabledProvider rejects every send; used when SMS_ENABLED=false.
type DisabledProvider struct{}

func (DisabledProvider) Send(ctx context.Context, phone string, body string) error {
	return ErrDisabled
}
