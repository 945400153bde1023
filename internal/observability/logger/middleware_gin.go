package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/permitdesk/internal/auditcontext"
	obscontext "github.com/smallbiznis/permitdesk/internal/observability/context"
	"go.uber.org/zap"
)

type MiddlewareConfig struct {
	// ErrorClassifier maps the last handler error to (error_type, error_code) log fields.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns a request id, seeds the audit and log contexts and logs one line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ensureRequestID(c)

		ctx := c.Request.Context()
		ctx = obscontext.WithRequestID(ctx, requestID)
		ctx = auditcontext.WithRequestID(ctx, requestID)
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		// Application, invoice and park routes all key on :id.
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}

		errorType := ""
		if lastErr := c.Errors.Last(); lastErr != nil && cfg.ErrorClassifier != nil {
			var errorCode string
			errorType, errorCode = cfg.ErrorClassifier(lastErr.Err)
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
		}

		log := FromContext(c.Request.Context())
		switch {
		case route == "/metrics" || route == "/health":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		case status == http.StatusTooManyRequests:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

func ensureRequestID(c *gin.Context) string {
	requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set("request_id", requestID)
	c.Header("X-Request-Id", requestID)
	return requestID
}
