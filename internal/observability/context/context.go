// Package context carries request correlation fields for logs and traces.
package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "obs_request_id"
	actorTypeKey ctxKey = "obs_actor_type"
	actorIDKey   ctxKey = "obs_actor_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	ctx = context.WithValue(ctx, actorTypeKey, strings.TrimSpace(actorType))
	return context.WithValue(ctx, actorIDKey, strings.TrimSpace(actorID))
}

func ActorFromContext(ctx context.Context) (string, string) {
	return stringValue(ctx, actorTypeKey), stringValue(ctx, actorIDKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
