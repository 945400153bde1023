package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/permitdesk/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})
	for column, value := range map[string]string{
		"action":      filter.Action,
		"target_type": filter.TargetType,
		"target_id":   filter.TargetID,
		"actor_type":  filter.ActorType,
	} {
		if value = strings.TrimSpace(value); value != "" {
			stmt = stmt.Where(column+" = ?", value)
		}
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
	}
	if pos := filter.Cursor; pos != nil {
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", pos.CreatedAt, pos.CreatedAt, pos.ID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var logs []*domain.AuditLog
	if err := stmt.Order("created_at desc, id desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) ListByTargets(ctx context.Context, db *gorm.DB, targets []domain.Target) ([]*domain.AuditLog, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	scope := db.WithContext(ctx)
	match := scope.Where("target_type = ? AND target_id = ?", targets[0].Type, targets[0].ID)
	for _, target := range targets[1:] {
		match = match.Or("target_type = ? AND target_id = ?", target.Type, target.ID)
	}

	var logs []*domain.AuditLog
	err := scope.Model(&domain.AuditLog{}).
		Where(match).
		Order("created_at asc, id asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
