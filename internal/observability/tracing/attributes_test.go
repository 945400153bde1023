package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsContactDetails(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/admin/applications/:id"),
		attribute.String("email", "jane@example.org"),
		attribute.String("phone", "555-0100"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("boom\nstack line")), "boom")
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}
