package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceRequest struct {
	pagination.Pagination
	Status InvoiceStatus `form:"status"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (Invoice, error)
	GetByApplication(ctx context.Context, applicationID snowflake.ID) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	RenderHTML(ctx context.Context, id snowflake.ID) (string, error)
	RenderPDF(ctx context.Context, id snowflake.ID) (io.Reader, error)
}

// Repository takes the handle explicitly so lifecycle transactions can reuse it.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByApplication(ctx context.Context, db *gorm.DB, applicationID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Invoice, error)
	// MarkPaid flips a pending invoice; false means it was not pending.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paidAt time.Time) (bool, error)
}

type ListFilter struct {
	Status InvoiceStatus
	Cursor *pagination.Position
	Limit  int
}

var (
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrInvalidInvoiceID = errors.New("invalid_invoice_id")
	ErrInvalidStatus    = errors.New("invalid_invoice_status")
)
