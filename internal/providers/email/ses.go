package email

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the part of the SES client the provider calls.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESProvider struct {
	client SESService
	from   string
}

func NewSES(client SESService, from string) *SESProvider {
	return &SESProvider{client: client, from: from}
}

func (p *SESProvider) Send(ctx context.Context, to []string, subject string, body string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	_, err := p.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(p.from),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	return err
}
