package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to[0]+"|"+subject)
	return nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, phone string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, phone+"|"+body)
	return nil
}

func message(method notificationdomain.Method) notificationdomain.Message {
	return notificationdomain.Message{
		To:      notificationdomain.Recipient{Name: "Jane", Email: "jane@example.org", Phone: "+15550100"},
		Method:  method,
		Subject: "Application update",
		Body:    "long body",
		SMSBody: "short body",
	}
}

func TestNotifierRoutesByMethod(t *testing.T) {
	cases := []struct {
		method    notificationdomain.Method
		wantEmail int
		wantSMS   int
	}{
		{notificationdomain.MethodEmail, 1, 0},
		{notificationdomain.MethodSMS, 0, 1},
		{notificationdomain.MethodBoth, 1, 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.method), func(t *testing.T) {
			mail, text := &fakeEmail{}, &fakeSMS{}
			require.NoError(t, NewNotifier(mail, text).Send(context.Background(), message(tc.method)))
			assert.Len(t, mail.sent, tc.wantEmail)
			assert.Len(t, text.sent, tc.wantSMS)
			if tc.wantSMS == 1 {
				assert.Equal(t, "+15550100|short body", text.sent[0])
			}
		})
	}
}

func TestNotifierJoinsChannelErrors(t *testing.T) {
	mailErr := errors.New("ses down")
	mail, text := &fakeEmail{err: mailErr}, &fakeSMS{}

	err := NewNotifier(mail, text).Send(context.Background(), message(notificationdomain.MethodBoth))
	require.Error(t, err)
	assert.ErrorIs(t, err, mailErr)
	assert.Len(t, text.sent, 1)
}

func TestNotifierRejectsMissingRecipient(t *testing.T) {
	msg := message(notificationdomain.MethodSMS)
	msg.To.Phone = " "
	err := NewNotifier(&fakeEmail{}, &fakeSMS{}).Send(context.Background(), msg)
	assert.ErrorIs(t, err, notificationdomain.ErrNoRecipient)

	msg.Method = "fax"
	err = NewNotifier(&fakeEmail{}, &fakeSMS{}).Send(context.Background(), msg)
	assert.ErrorIs(t, err, notificationdomain.ErrInvalidMethod)
}
