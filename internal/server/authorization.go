package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/permitdesk/internal/auditcontext"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/authorization"
	obscontext "github.com/smallbiznis/permitdesk/internal/observability/context"
)

const (
	headerStaffUser = "X-Staff-User"
	headerStaffRole = "X-Staff-Role"

	contextStaffKey = "staff"
)

// StaffRequired reads the identity forwarded by the upstream proxy.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff := authorization.Staff{
			User: strings.TrimSpace(c.GetHeader(headerStaffUser)),
			Role: strings.ToLower(strings.TrimSpace(c.GetHeader(headerStaffRole))),
		}
		if staff.User == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := auditcontext.WithActor(c.Request.Context(), string(auditdomain.ActorTypeStaff), staff.User)
		ctx = obscontext.WithActor(ctx, string(auditdomain.ActorTypeStaff), staff.User)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextStaffKey, staff)
		c.Next()
	}
}

func PublicActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auditcontext.WithActor(c.Request.Context(), string(auditdomain.ActorTypePublic), "")
		ctx = obscontext.WithActor(ctx, string(auditdomain.ActorTypePublic), "")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, ok := staffFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), staff, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func staffFromContext(c *gin.Context) (authorization.Staff, bool) {
	value, ok := c.Get(contextStaffKey)
	if !ok {
		return authorization.Staff{}, false
	}
	staff, ok := value.(authorization.Staff)
	return staff, ok
}
