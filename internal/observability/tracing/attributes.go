package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var blockedKeys = map[attribute.Key]struct{}{
	"email":       {},
	"phone":       {},
	"first_name":  {},
	"last_name":   {},
	"address":     {},
	"http.target": {},
}

// SafeAttributes drops attributes that could carry applicant contact details.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedKeys[attr.Key]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError keeps only the first line of an error message.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
