package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	"github.com/smallbiznis/permitdesk/internal/application/repository"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	auditrepository "github.com/smallbiznis/permitdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/permitdesk/internal/audit/service"
	"github.com/smallbiznis/permitdesk/internal/auditcontext"
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/internal/config"
	feeservice "github.com/smallbiznis/permitdesk/internal/feecatalog/service"
	insuranceservice "github.com/smallbiznis/permitdesk/internal/insurance/service"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/permitdesk/internal/invoice/repository"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	parkservice "github.com/smallbiznis/permitdesk/internal/park/service"
	"github.com/smallbiznis/permitdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	park  parkdomain.Park
	svc   applicationdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	holder, err := config.NewStaticCatalogHolder(config.DefaultCatalog())
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		InvoiceRepo: invoicerepository.Provide(),
		ParkSvc:     parkservice.NewService(db, log),
		FeeSvc:      feeservice.NewService(holder),
		InsSvc:      insuranceservice.NewService(holder),
		AuditSvc:    auditSvc,
	})

	return &fixture{
		db:    db,
		node:  node,
		clock: clk,
		park:  testutil.InsertPark(t, db, node, "Riverbend State Park", parkdomain.ParkStatusActive),
		svc:   svc,
	}
}

func (f *fixture) request() applicationdomain.CreateRequest {
	phone := " +1 555 555 0100 "
	activity := "wedding"
	start, end := "10:00", "14:30"
	return applicationdomain.CreateRequest{
		FirstName:         "Jane",
		LastName:          "Doe",
		Email:             "Jane@Example.org",
		Phone:             &phone,
		EventTitle:        "Doe Wedding",
		EventDates:        []string{"2026-06-02", "2026-06-01", "2026-06-02"},
		AttendeeCount:     80,
		StartTime:         &start,
		EndTime:           &end,
		ParkID:            f.park.ID.String(),
		ApplicationFee:    25,
		InsuranceActivity: &activity,
	}
}

func strPtr(v string) *string { return &v }

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := auditcontext.WithActor(context.Background(), "public", "")

	app, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	assert.Equal(t, applicationdomain.ApplicationStatusPending, app.Status)
	assert.False(t, app.IsPaid)
	assert.True(t, strings.HasPrefix(app.ApplicationNumber, "SUP-2026-"))
	assert.Equal(t, "jane@example.org", app.Email)
	assert.Equal(t, "+1 555 555 0100", *app.Phone)
	assert.Equal(t, []string{"2026-06-01", "2026-06-02"}, []string(app.EventDates))
	assert.Equal(t, config.DefaultPermitFee, app.PermitFee)
	assert.Equal(t, 60.0, app.TotalFee)
	require.NotNil(t, app.InsuranceTier)
	assert.Equal(t, 1, *app.InsuranceTier)
	assert.Equal(t, "Wedding", *app.InsuranceActivity)

	stored, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationNumber, stored.ApplicationNumber)
	assert.Equal(t, 60.0, stored.TotalFee)

	var entry auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "application.created").First(&entry).Error)
	assert.Equal(t, "public", entry.ActorType)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, app.ID.String(), *entry.TargetID)
	assert.Equal(t, "j****@example.org", entry.Metadata["email"])
	assert.Equal(t, "****0100", entry.Metadata["phone"])
}

func TestCreateWithLocationFee(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	permitFee := 75.0
	req.PermitFee = &permitFee
	req.LocationFeeRequired = true
	req.LocationFee = 40

	app, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 75.0, app.PermitFee)
	assert.Equal(t, 40.0, app.LocationFee)
	assert.Equal(t, 140.0, app.TotalFee)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*applicationdomain.CreateRequest)
		want   error
	}{
		{
			name:   "no event dates",
			mutate: func(r *applicationdomain.CreateRequest) { r.EventDates = nil },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "malformed date",
			mutate: func(r *applicationdomain.CreateRequest) { r.EventDates = []string{"06/01/2026"} },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "malformed time",
			mutate: func(r *applicationdomain.CreateRequest) { r.StartTime = strPtr("10am") },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "end before start",
			mutate: func(r *applicationdomain.CreateRequest) { r.EndTime = strPtr("09:00") },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name: "end equals single-digit start",
			mutate: func(r *applicationdomain.CreateRequest) {
				r.StartTime = strPtr("9:00")
				r.EndTime = strPtr("09:00")
			},
			want: applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "bad email",
			mutate: func(r *applicationdomain.CreateRequest) { r.Email = "not-an-email" },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name: "permit fee outside catalog",
			mutate: func(r *applicationdomain.CreateRequest) {
				fee := 42.0
				r.PermitFee = &fee
			},
			want: applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "application fee outside catalog",
			mutate: func(r *applicationdomain.CreateRequest) { r.ApplicationFee = 26 },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "location fee required without amount",
			mutate: func(r *applicationdomain.CreateRequest) { r.LocationFeeRequired = true },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "malformed park id",
			mutate: func(r *applicationdomain.CreateRequest) { r.ParkID = "riverbend" },
			want:   applicationdomain.ErrInvalidApplication,
		},
		{
			name:   "unknown park",
			mutate: func(r *applicationdomain.CreateRequest) { r.ParkID = f.node.Generate().String() },
			want:   applicationdomain.ErrParkUnavailable,
		},
		{
			name:   "unknown activity",
			mutate: func(r *applicationdomain.CreateRequest) { r.InsuranceActivity = strPtr("Hot air balloon") },
			want:   applicationdomain.ErrUnknownActivity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request()
			tc.mutate(&req)
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateNormalizesSingleDigitHours(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		start, end, setup string
		wantStart         string
		wantEnd           string
	}{
		{start: "9:00", end: "17:00", setup: "7:30", wantStart: "09:00", wantEnd: "17:00"},
		{start: "9:30", end: "10:00", setup: "", wantStart: "09:30", wantEnd: "10:00"},
	}
	for _, tc := range cases {
		t.Run(tc.start+"-"+tc.end, func(t *testing.T) {
			req := f.request()
			req.StartTime = strPtr(tc.start)
			req.EndTime = strPtr(tc.end)
			req.SetupTime = nil
			if tc.setup != "" {
				req.SetupTime = strPtr(tc.setup)
			}

			app, err := f.svc.Create(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, app.StartTime)
			require.NotNil(t, app.EndTime)
			assert.Equal(t, tc.wantStart, *app.StartTime)
			assert.Equal(t, tc.wantEnd, *app.EndTime)

			stored, err := f.svc.Get(context.Background(), app.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStart, *stored.StartTime)
			if tc.setup == "" {
				assert.Nil(t, stored.SetupTime)
			} else {
				require.NotNil(t, stored.SetupTime)
				assert.Equal(t, "07:30", *stored.SetupTime)
			}
		})
	}
}

func TestCreateRejectsInactivePark(t *testing.T) {
	f := newFixture(t)
	closed := testutil.InsertPark(t, f.db, f.node, "Closed Park", parkdomain.ParkStatusMaintenance)

	req := f.request()
	req.ParkID = closed.ID.String()
	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, applicationdomain.ErrParkUnavailable)
}

func TestCreateAllowsZeroFees(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	zero := 0.0
	req.ApplicationFee = 0
	req.PermitFee = &zero

	app, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, app.TotalFee)
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
			a.CreatedAt = createdAt
			a.UpdatedAt = createdAt
		})
	}
	testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
		a.CreatedAt = base.Add(-time.Hour)
	})

	ctx := context.Background()
	req := applicationdomain.ListRequest{Status: applicationdomain.ApplicationStatusPending}
	req.PageSize = 2

	first, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.Applications, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextPageToken)
	assert.True(t, first.Applications[0].CreatedAt.After(first.Applications[1].CreatedAt))

	req.PageToken = first.NextPageToken
	second, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.Applications, 1)
	assert.False(t, second.HasMore)
	assert.True(t, base.Equal(second.Applications[0].CreatedAt))

	_, err = f.svc.List(ctx, applicationdomain.ListRequest{Status: "archived"})
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidStatus)
}

func TestMarkApplicationFeePaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := testutil.InsertApplication(t, f.db, f.node, f.park.ID, nil)

	paid, err := f.svc.MarkApplicationFeePaid(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	again, err := f.svc.MarkApplicationFeePaid(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)

	var count int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).Where("action = ?", "application.fee_paid").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	approved := testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
	})
	_, err = f.svc.MarkApplicationFeePaid(ctx, approved.ID)
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidTransition)

	_, err = f.svc.MarkApplicationFeePaid(ctx, f.node.Generate())
	assert.ErrorIs(t, err, applicationdomain.ErrApplicationNotFound)
}

func TestMarkLocationFeePaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notRequired := testutil.InsertApplication(t, f.db, f.node, f.park.ID, nil)
	_, err := f.svc.MarkLocationFeePaid(ctx, notRequired.ID)
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidOperation)

	required := testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
		a.LocationFeeRequired = true
		a.LocationFee = 40
	})
	paid, err := f.svc.MarkLocationFeePaid(ctx, required.ID)
	require.NoError(t, err)
	assert.True(t, paid.LocationFeePaid)

	disapproved := testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
		a.LocationFeeRequired = true
		a.LocationFee = 40
		a.Status = applicationdomain.ApplicationStatusDisapproved
	})
	_, err = f.svc.MarkLocationFeePaid(ctx, disapproved.ID)
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidOperation)
}

func TestPaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := testutil.InsertApplication(t, f.db, f.node, f.park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
		a.IsPaid = true
	})

	status, err := f.svc.PaymentStatus(ctx, app.ID)
	require.NoError(t, err)
	assert.Nil(t, status.InvoiceID)
	assert.True(t, status.ApplicationFee.Paid)
	assert.True(t, status.PermitFee.Required)
	assert.False(t, status.PermitFee.Paid)
	assert.False(t, status.Complete)

	now := f.clock.Now()
	invoiceID := f.node.Generate()
	require.NoError(t, f.db.Create(&invoicedomain.Invoice{
		ID:            invoiceID,
		InvoiceNumber: invoicedomain.NumberFor(invoiceID),
		ApplicationID: app.ID,
		Amount:        3500,
		Status:        invoicedomain.InvoiceStatusPaid,
		PaidAt:        &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)

	status, err = f.svc.PaymentStatus(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, status.InvoiceID)
	assert.Equal(t, invoiceID, *status.InvoiceID)
	assert.True(t, status.PermitFee.Paid)
	assert.True(t, status.Complete)
}

func TestAttachInsuranceDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := testutil.InsertApplication(t, f.db, f.node, f.park.ID, nil)

	_, err := f.svc.AttachInsuranceDocument(ctx, app.ID, "  ")
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidDocumentKey)

	updated, err := f.svc.AttachInsuranceDocument(ctx, app.ID, "insurance/abc/certificate.pdf")
	require.NoError(t, err)
	require.NotNil(t, updated.InsuranceDocumentKey)
	assert.Equal(t, "insurance/abc/certificate.pdf", *updated.InsuranceDocumentKey)
}
