package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/audit/masking"
	"github.com/smallbiznis/permitdesk/internal/auditcontext"
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	resolvedActorType, resolvedActorID := s.resolveActor(ctx, strings.TrimSpace(actorType), actorID)
	ipAddress := auditcontext.IPAddressFromContext(ctx)
	userAgent := auditcontext.UserAgentFromContext(ctx)

	payload := make(map[string]any, len(metadata)+1)
	for key, value := range metadata {
		if key = strings.TrimSpace(key); key != "" {
			payload[key] = value
		}
	}
	masking.MaskContact(payload)
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  resolvedActorType,
		ActorID:    resolvedActorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	if userAgent != "" {
		entry.UserAgent = &userAgent
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	cursor, err := pagination.ParsePosition(req.PageToken)
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	limit := req.Size()
	items, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorType:  req.ActorType,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      limit,
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *auditdomain.AuditLog) string {
		return pagination.PositionToken(item.ID, item.CreatedAt)
	})

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}
	return auditdomain.ListAuditLogResponse{PageInfo: pageInfo, AuditLogs: logs}, nil
}

func (s *Service) History(ctx context.Context, targets ...auditdomain.Target) ([]auditdomain.AuditLog, error) {
	cleaned := make([]auditdomain.Target, 0, len(targets))
	for _, target := range targets {
		target.Type = strings.TrimSpace(target.Type)
		target.ID = strings.TrimSpace(target.ID)
		if target.Type == "" || target.ID == "" {
			return nil, auditdomain.ErrInvalidTarget
		}
		cleaned = append(cleaned, target)
	}
	if len(cleaned) == 0 {
		return nil, auditdomain.ErrInvalidTarget
	}

	items, err := s.repo.ListByTargets(ctx, s.db, cleaned)
	if err != nil {
		return nil, err
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item != nil {
			logs = append(logs, *item)
		}
	}
	return logs, nil
}

// resolveActor prefers the explicit actor and falls back to the one on ctx, then to system.
func (s *Service) resolveActor(ctx context.Context, actorType string, actorID *string) (string, *string) {
	id := normalizePointer(actorID)
	if actorType != "" {
		return actorType, id
	}

	ctxType, ctxID := auditcontext.ActorFromContext(ctx)
	if ctxType == "" {
		return string(auditdomain.ActorTypeSystem), id
	}
	if id == nil {
		id = normalizePointer(&ctxID)
	}
	return ctxType, id
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
