package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/authorization"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/permitdesk/internal/lifecycle/domain"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/internal/providers/storage"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// ValidationError is a request problem detected in the HTTP layer itself.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (v *ValidationError) Error() string {
	return v.Message
}

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrRateLimited        = errors.New("rate_limited")
	ErrPayloadTooLarge    = errors.New("payload_too_large")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type errorClass struct {
	status    int
	errType   string
	sentinels []error
}

var errorClasses = []errorClass{
	{
		status:  http.StatusBadRequest,
		errType: "validation_error",
		sentinels: []error{
			lifecycledomain.ErrReasonRequired,
			lifecycledomain.ErrPhoneRequired,
			lifecycledomain.ErrInvalidNotifyMethod,
			applicationdomain.ErrInvalidApplicationID,
			applicationdomain.ErrInvalidApplication,
			applicationdomain.ErrInvalidStatus,
			applicationdomain.ErrParkUnavailable,
			applicationdomain.ErrUnknownActivity,
			applicationdomain.ErrInvalidDocumentKey,
			invoicedomain.ErrInvalidInvoiceID,
			invoicedomain.ErrInvalidStatus,
			insurancedomain.ErrInvalidTier,
			parkdomain.ErrInvalidPark,
			parkdomain.ErrInvalidStatus,
			auditdomain.ErrInvalidTimeRange,
			auditdomain.ErrInvalidAction,
			auditdomain.ErrInvalidTarget,
			pagination.ErrInvalidPageToken,
			feedomain.ErrUnknownAmount,
		},
	},
	{
		status:    http.StatusBadRequest,
		errType:   "configuration_error",
		sentinels: []error{feedomain.ErrUnknownCategory},
	},
	{
		status:    http.StatusUnauthorized,
		errType:   "unauthorized",
		sentinels: []error{ErrUnauthorized, authorization.ErrUnauthenticated},
	},
	{
		status:    http.StatusForbidden,
		errType:   "forbidden",
		sentinels: []error{ErrForbidden, authorization.ErrForbidden},
	},
	{
		status:  http.StatusNotFound,
		errType: "not_found",
		sentinels: []error{
			ErrNotFound,
			applicationdomain.ErrApplicationNotFound,
			invoicedomain.ErrInvoiceNotFound,
			parkdomain.ErrParkNotFound,
			insurancedomain.ErrActivityNotFound,
			gorm.ErrRecordNotFound,
		},
	},
	{
		status:    http.StatusConflict,
		errType:   "invalid_transition",
		sentinels: []error{lifecycledomain.ErrInvalidTransition},
	},
	{
		status:    http.StatusConflict,
		errType:   "invalid_operation",
		sentinels: []error{lifecycledomain.ErrInvalidOperation},
	},
	{
		status:    http.StatusRequestEntityTooLarge,
		errType:   "payload_too_large",
		sentinels: []error{ErrPayloadTooLarge},
	},
	{
		status:    http.StatusTooManyRequests,
		errType:   "rate_limited",
		sentinels: []error{ErrRateLimited},
	},
	{
		status:    http.StatusServiceUnavailable,
		errType:   "service_unavailable",
		sentinels: []error{ErrServiceUnavailable, storage.ErrDisabled},
	},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationError{Field: field, Code: code, Message: message}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    vErr.Code,
			Message: vErr.Message,
			Field:   vErr.Field,
		}
	}

	if class, sentinel, ok := classify(err); ok {
		return class.status, errorPayload{
			Type:    class.errType,
			Code:    sentinel.Error(),
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Code:    "internal_error",
		Message: "internal server error",
	}
}

func classify(err error) (errorClass, error, bool) {
	if err == nil {
		return errorClass{}, nil, false
	}
	for _, class := range errorClasses {
		for _, sentinel := range class.sentinels {
			if errors.Is(err, sentinel) {
				return class, sentinel, true
			}
		}
	}
	return errorClass{}, nil, false
}

func classifyErrorForLog(err error) (string, string) {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr != nil {
		return "validation_error", vErr.Code
	}
	if class, sentinel, ok := classify(err); ok {
		return class.errType, sentinel.Error()
	}
	return "internal_error", "internal_error"
}
