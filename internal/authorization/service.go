package authorization

import (
	"context"
	"errors"
)

// Staff is the caller identity forwarded by the trusted upstream proxy.
type Staff struct {
	User string
	Role string
}

func (s Staff) Subject() string {
	return "staff:" + s.User
}

type Service interface {
	Authorize(ctx context.Context, staff Staff, object string, action string) error
}

const (
	RoleClerk    = "clerk"
	RoleReviewer = "reviewer"
	RoleFinance  = "finance"
	RoleAdmin    = "admin"
)

const (
	ObjectApplication = "application"
	ObjectPayment     = "payment"
	ObjectPermit      = "permit"
	ObjectInvoice     = "invoice"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionApplicationView       = "application.view"
	ActionApplicationUpdate     = "application.update"
	ActionApplicationApprove    = "application.approve"
	ActionApplicationDisapprove = "application.disapprove"
	ActionApplicationDelete     = "application.delete"

	ActionPaymentRecord = "payment.record"
	ActionPermitPrint   = "permit.print"
	ActionInvoiceView   = "invoice.view"
	ActionAuditLogView  = "audit_log.view"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidObject   = errors.New("invalid_object")
	ErrInvalidAction   = errors.New("invalid_action")
)

// KnownRole reports whether role is one of the seeded staff roles.
func KnownRole(role string) bool {
	switch role {
	case RoleClerk, RoleReviewer, RoleFinance, RoleAdmin:
		return true
	default:
		return false
	}
}
