package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	if invoice == nil {
		return nil
	}
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	return first(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *repo) FindByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) (*domain.Invoice, error) {
	return first(db.WithContext(ctx).Where("application_id = ?", applicationID))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
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

	var invoices []*domain.Invoice
	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paidAt time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status = ?", id, domain.InvoiceStatusPending).
		Updates(map[string]any{
			"status":     domain.InvoiceStatusPaid,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func first(stmt *gorm.DB) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := stmt.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}
