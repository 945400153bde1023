package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActorType string

const (
	ActorTypeSystem ActorType = "system"
	ActorTypeStaff  ActorType = "staff"
	ActorTypePublic ActorType = "public"
)

// AuditLog is an append-only record of a state change.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"type:text;not null" json:"actor_type"`
	ActorID    *string           `gorm:"type:text" json:"actor_id,omitempty"`
	Action     string            `gorm:"type:text;not null;index" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"type:text;index" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress  *string           `gorm:"type:text" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *pagination.Position
	Limit      int
}

// Target identifies the record an entry is about.
type Target struct {
	Type string
	ID   string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
	// ListByTargets returns every entry for any of targets, oldest first.
	ListByTargets(ctx context.Context, db *gorm.DB, targets []Target) ([]*AuditLog, error)
}
