package email

import (
	"context"
	"errors"
)

// Provider delivers plain-text mail.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

var ErrNoRecipients = errors.New("email_no_recipients")

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, body string) error {
	return nil
}
