// Package auditcontext carries the request facts recorded on audit entries.
package auditcontext

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "audit_request_id"
	ipAddressKey ctxKey = "audit_ip_address"
	userAgentKey ctxKey = "audit_user_agent"
	actorTypeKey ctxKey = "audit_actor_type"
	actorIDKey   ctxKey = "audit_actor_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	return value(ctx, requestIDKey)
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipAddressKey, strings.TrimSpace(ip))
}

func IPAddressFromContext(ctx context.Context) string {
	return value(ctx, ipAddressKey)
}

func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentKey, strings.TrimSpace(userAgent))
}

func UserAgentFromContext(ctx context.Context) string {
	return value(ctx, userAgentKey)
}

// WithActor records who performed the request, e.g. ("staff", "jdoe") or ("public", "").
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	ctx = context.WithValue(ctx, actorTypeKey, strings.TrimSpace(actorType))
	return context.WithValue(ctx, actorIDKey, strings.TrimSpace(actorID))
}

func ActorFromContext(ctx context.Context) (string, string) {
	return value(ctx, actorTypeKey), value(ctx, actorIDKey)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
