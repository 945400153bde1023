package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func TestSESProviderSend(t *testing.T) {
	client := &mockSES{}
	p := NewSES(client, "permits@example.org")

	require.NoError(t, p.Send(context.Background(), []string{"jane@example.org"}, "Application update", "Hello Jane"))
	require.NotNil(t, client.input)
	assert.Equal(t, "permits@example.org", *client.input.Source)
	assert.Equal(t, []string{"jane@example.org"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Application update", *client.input.Message.Subject.Data)
	assert.Equal(t, "Hello Jane", *client.input.Message.Body.Text.Data)
}

func TestSESProviderPropagatesErrors(t *testing.T) {
	p := NewSES(&mockSES{err: errors.New("throttled")}, "permits@example.org")
	assert.EqualError(t, p.Send(context.Background(), []string{"jane@example.org"}, "s", "b"), "throttled")
	assert.ErrorIs(t, p.Send(context.Background(), nil, "s", "b"), ErrNoRecipients)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("permits@example.org", []string{"a@example.org", "b@example.org"}, "Your\napplication", "line one\nline two"))
	assert.Contains(t, msg, "To: a@example.org, b@example.org\r\n")
	assert.Contains(t, msg, "Subject: Your application\r\n")
	assert.True(t, strings.HasSuffix(msg, "line one\r\nline two"))
}
