// Package domain defines the status transitions staff apply to permit applications.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
)

type ApproveResult struct {
	Application applicationdomain.Application `json:"application"`
	// Invoice is nil when the permit fee is zero.
	Invoice *invoicedomain.Invoice `json:"invoice,omitempty"`
}

type DisapproveRequest struct {
	ApplicationID snowflake.ID `json:"-"`
	Reason        string       `json:"reason"`
	NotifyMethod  string       `json:"notify_method"`
}

type MarkPaidResult struct {
	Invoice     invoicedomain.Invoice `json:"invoice"`
	AlreadyPaid bool                  `json:"already_paid"`
}

// Service moves applications out of pending and settles their invoices. Each call
// runs in a single transaction; nothing is applied when an error is returned.
type Service interface {
	Approve(ctx context.Context, applicationID snowflake.ID) (ApproveResult, error)
	Disapprove(ctx context.Context, req DisapproveRequest) (applicationdomain.Application, error)
	Delete(ctx context.Context, applicationID snowflake.ID) error
	MarkInvoicePaid(ctx context.Context, invoiceID snowflake.ID) (MarkPaidResult, error)
}

var (
	ErrInvalidTransition   = applicationdomain.ErrInvalidTransition
	ErrInvalidOperation    = applicationdomain.ErrInvalidOperation
	ErrInvalidNotifyMethod = notificationdomain.ErrInvalidMethod

	ErrReasonRequired = errors.New("disapproval_reason_required")
	ErrPhoneRequired  = errors.New("phone_required_for_sms")
	// ErrInvoiceAlreadyExists means a pending application already has an invoice,
	// which approval never produces.
	ErrInvoiceAlreadyExists = errors.New("invoice_already_exists")
)
