package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/permitdesk/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens a server span per request, continuing any inbound trace.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("permitdesk/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		method := strings.ToUpper(c.Request.Method)
		ctx, span := tracer.Start(ctx, "HTTP "+method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + method + " " + route)
		attrs := []attribute.KeyValue{
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		}
		if actorType, _ := obscontext.ActorFromContext(c.Request.Context()); actorType != "" {
			attrs = append(attrs, attribute.String("permitdesk.actor_type", actorType))
		}
		if id := c.Param("id"); id != "" {
			attrs = append(attrs, attribute.String("permitdesk.resource_id", id))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
