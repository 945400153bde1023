package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/internal/application/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	if app == nil {
		return nil
	}
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	return r.first(db.WithContext(ctx), id)
}

// FindByIDForUpdate takes a row lock where the dialect supports one.
func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	return r.first(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) first(stmt *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	err := stmt.Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Application, error) {
	stmt := db.WithContext(ctx).Model(&domain.Application{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ParkID != 0 {
		stmt = stmt.Where("park_id = ?", filter.ParkID)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}
	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var apps []*domain.Application
	if err := stmt.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) TransitionFromPending(ctx context.Context, db *gorm.DB, id snowflake.ID, to domain.ApplicationStatus, fields map[string]any) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = to

	result := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND status = ?", id, domain.ApplicationStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Application{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
