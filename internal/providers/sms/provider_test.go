package sms

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	input *sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = params
	return &sns.PublishOutput{}, nil
}

func TestSNSProviderSend(t *testing.T) {
	client := &mockSNS{}
	p := NewSNS(client, "PARKS")

	require.NoError(t, p.Send(context.Background(), "+1 (555) 010-0100", "Your application was not approved."))
	require.NotNil(t, client.input)
	assert.Equal(t, "+15550100100", *client.input.PhoneNumber)
	assert.Equal(t, "Your application was not approved.", *client.input.Message)
	assert.Equal(t, "PARKS", *client.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestSNSProviderRequiresPhone(t *testing.T) {
	client := &mockSNS{}
	err := NewSNS(client, "").Send(context.Background(), " + ", "hi")
	assert.ErrorIs(t, err, ErrNoPhone)
	assert.Nil(t, client.input)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5550100", NormalizePhone("555-0100"))
	assert.Equal(t, "+447700900123", NormalizePhone(" +44 7700 900123 "))
	assert.Equal(t, "", NormalizePhone(""))
}
