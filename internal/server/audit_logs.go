package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorType  string `form:"actor_type"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt, err := parseOptionalTime("start_at", query.StartAt, false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	endAt, err := parseOptionalTime("end_at", query.EndAt, true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
		ActorType:  strings.TrimSpace(query.ActorType),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "page_info": resp.PageInfo})
}

// ApplicationHistory returns the audit trail of an application and its invoice.
// The trail outlives a deleted application.
func (s *Server) ApplicationHistory(c *gin.Context) {
	id, err := parsePathID(c.Param("id"), applicationdomain.ErrInvalidApplicationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ctx := c.Request.Context()

	targets := []auditdomain.Target{{Type: "application", ID: id.String()}}
	inv, err := s.invoiceSvc.GetByApplication(ctx, id)
	switch {
	case err == nil:
		targets = append(targets, auditdomain.Target{Type: "invoice", ID: inv.ID.String()})
	case !errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		AbortWithError(c, err)
		return
	}

	logs, err := s.auditSvc.History(ctx, targets...)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
