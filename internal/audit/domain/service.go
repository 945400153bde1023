package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string     `form:"action"`
	TargetType string     `form:"target_type"`
	TargetID   string     `form:"target_id"`
	ActorType  string     `form:"actor_type"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// AuditLog records an entry. An empty actorType falls back to the actor on ctx.
	AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
	// History returns the full trail for the given targets in the order it happened.
	History(ctx context.Context, targets ...Target) ([]AuditLog, error)
}

var (
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTarget    = errors.New("invalid_target")
)
