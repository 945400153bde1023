package authorization

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	auditrepository "github.com/smallbiznis/permitdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/permitdesk/internal/audit/service"
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	log := zaptest.NewLogger(t)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: testutil.Node(t),
		Clock: clock.NewFakeClock(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  auditrepository.Provide(),
	})
	return NewService(Params{Log: log, Enforcer: enforcer, AuditSvc: audit}), db
}

func TestRolePermissions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role   string
		object string
		action string
		allow  bool
	}{
		{RoleClerk, ObjectApplication, ActionApplicationView, true},
		{RoleClerk, ObjectApplication, ActionApplicationUpdate, true},
		{RoleClerk, ObjectApplication, ActionApplicationApprove, false},
		{RoleClerk, ObjectPayment, ActionPaymentRecord, false},

		{RoleReviewer, ObjectApplication, ActionApplicationView, true},
		{RoleReviewer, ObjectApplication, ActionApplicationApprove, true},
		{RoleReviewer, ObjectApplication, ActionApplicationDisapprove, true},
		{RoleReviewer, ObjectPermit, ActionPermitPrint, true},
		{RoleReviewer, ObjectApplication, ActionApplicationDelete, false},

		{RoleFinance, ObjectInvoice, ActionInvoiceView, true},
		{RoleFinance, ObjectPayment, ActionPaymentRecord, true},
		{RoleFinance, ObjectApplication, ActionApplicationApprove, false},

		{RoleAdmin, ObjectApplication, ActionApplicationDelete, true},
		{RoleAdmin, ObjectApplication, ActionApplicationApprove, true},
		{RoleAdmin, ObjectPayment, ActionPaymentRecord, true},
		{RoleAdmin, ObjectAuditLog, ActionAuditLogView, true},
	}
	for _, tc := range cases {
		t.Run(tc.role+" "+tc.action, func(t *testing.T) {
			err := svc.Authorize(ctx, Staff{User: "u-" + tc.role, Role: tc.role}, tc.object, tc.action)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeRejectsMissingIdentity(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, Staff{Role: RoleAdmin}, ObjectApplication, ActionApplicationView), ErrUnauthenticated)
	assert.ErrorIs(t, svc.Authorize(ctx, Staff{User: "kim", Role: "janitor"}, ObjectApplication, ActionApplicationView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, Staff{User: "kim", Role: RoleAdmin}, "", ActionApplicationView), ErrInvalidObject)

	var denied []auditdomain.AuditLog
	require.NoError(t, db.Where("action = ?", "authorization.denied").Find(&denied).Error)
	require.Len(t, denied, 1)
	assert.Equal(t, "staff", denied[0].ActorType)
	require.NotNil(t, denied[0].ActorID)
	assert.Equal(t, "kim", *denied[0].ActorID)
	assert.Equal(t, "janitor", denied[0].Metadata["role"])
}

func TestRoleHeaderChangeReplacesLink(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, Staff{User: "sam", Role: "Clerk"}, ObjectApplication, ActionApplicationDelete), ErrForbidden)
	assert.NoError(t, svc.Authorize(ctx, Staff{User: "sam", Role: RoleAdmin}, ObjectApplication, ActionApplicationDelete))
	assert.ErrorIs(t, svc.Authorize(ctx, Staff{User: "sam", Role: RoleClerk}, ObjectApplication, ActionApplicationDelete), ErrForbidden)
}

func TestNewEnforcerSeedsOnce(t *testing.T) {
	db := testutil.OpenDB(t)

	_, err := NewEnforcer(db)
	require.NoError(t, err)
	var first int64
	require.NoError(t, db.Table("casbin_rule").Count(&first).Error)
	assert.Positive(t, first)

	_, err = NewEnforcer(db)
	require.NoError(t, err)
	var second int64
	require.NoError(t, db.Table("casbin_rule").Count(&second).Error)
	assert.Equal(t, first, second)
}
