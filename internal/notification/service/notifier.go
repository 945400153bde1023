package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
	"github.com/smallbiznis/permitdesk/internal/providers/email"
	"github.com/smallbiznis/permitdesk/internal/providers/sms"
)

type Notifier struct {
	email email.Provider
	sms   sms.Provider
}

func NewNotifier(emailProvider email.Provider, smsProvider sms.Provider) notificationdomain.Notifier {
	return &Notifier{email: emailProvider, sms: smsProvider}
}

// Send delivers over every channel the method names; failures on one channel do not skip the other.
func (n *Notifier) Send(ctx context.Context, msg notificationdomain.Message) error {
	if _, err := notificationdomain.ParseMethod(string(msg.Method)); err != nil {
		return err
	}

	var errs []error
	if msg.Method.UsesEmail() {
		to := strings.TrimSpace(msg.To.Email)
		if to == "" {
			errs = append(errs, fmt.Errorf("email: %w", notificationdomain.ErrNoRecipient))
		} else if err := n.email.Send(ctx, []string{to}, msg.Subject, msg.Body); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if msg.Method.UsesSMS() {
		body := msg.SMSBody
		if body == "" {
			body = msg.Body
		}
		phone := strings.TrimSpace(msg.To.Phone)
		if phone == "" {
			errs = append(errs, fmt.Errorf("sms: %w", notificationdomain.ErrNoRecipient))
		} else if err := n.sms.Send(ctx, phone, body); err != nil {
			errs = append(errs, fmt.Errorf("sms: %w", err))
		}
	}
	return errors.Join(errs...)
}
