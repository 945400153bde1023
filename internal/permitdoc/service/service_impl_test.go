package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	applicationrepository "github.com/smallbiznis/permitdesk/internal/application/repository"
	"github.com/smallbiznis/permitdesk/internal/config"
	insuranceservice "github.com/smallbiznis/permitdesk/internal/insurance/service"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/permitdesk/internal/invoice/repository"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	parkservice "github.com/smallbiznis/permitdesk/internal/park/service"
	permitdomain "github.com/smallbiznis/permitdesk/internal/permitdoc/domain"
	"github.com/smallbiznis/permitdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newService(t *testing.T) (permitdomain.Service, *gorm.DB, *snowflake.Node, parkdomain.Park) {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zaptest.NewLogger(t)
	holder, err := config.NewStaticCatalogHolder(config.DefaultCatalog())
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:          db,
		Log:         log,
		Config:      config.Config{Agency: config.AgencyConfig{Name: "State Parks", Email: "permits@example.org"}},
		AppRepo:     applicationrepository.Provide(),
		InvoiceRepo: invoicerepository.Provide(),
		ParkSvc:     parkservice.NewService(db, log),
		InsSvc:      insuranceservice.NewService(holder),
	})
	park := testutil.InsertPark(t, db, node, "Riverbend State Park", parkdomain.ParkStatusActive)
	return svc, db, node, park
}

func strPtr(v string) *string { return &v }

func TestRenderApprovedPermit(t *testing.T) {
	svc, db, node, park := newService(t)
	ctx := context.Background()
	approvedAt := time.Date(2026, 5, 4, 16, 0, 0, 0, time.UTC)
	tier := 2

	app := testutil.InsertApplication(t, db, node, park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
		a.ApprovedAt = &approvedAt
		a.PermitFee = 100
		a.TotalFee = 125
		a.IsPaid = true
		a.StartTime = strPtr("09:00")
		a.EndTime = strPtr("17:30")
		a.LocationName = strPtr("North Meadow")
		a.InsuranceCarrier = strPtr("Acme Mutual")
		a.InsuranceActivity = strPtr("Festival")
		a.InsuranceTier = &tier
	})
	invoiceID := node.Generate()
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:            invoiceID,
		InvoiceNumber: invoicedomain.NumberFor(invoiceID),
		ApplicationID: app.ID,
		Amount:        10000,
		Status:        invoicedomain.InvoiceStatusPending,
		CreatedAt:     approvedAt,
		UpdatedAt:     approvedAt,
	}).Error)

	html, err := svc.Render(ctx, app.ID)
	require.NoError(t, err)

	assert.Contains(t, html, app.ApplicationNumber)
	assert.Contains(t, html, "May 4, 2026")
	assert.Contains(t, html, "Riverbend State Park")
	assert.Contains(t, html, "North Meadow")
	assert.Contains(t, html, "June 1, 2026")
	assert.Contains(t, html, "9:00 AM to 5:30 PM")
	assert.Contains(t, html, "Acme Mutual")
	assert.Contains(t, html, "Tier 2: $1,000,000 per occurrence / $2,000,000 aggregate")
	assert.Contains(t, html, "$25.00")
	assert.Contains(t, html, "$100.00")
	assert.Contains(t, html, "$125.00")
	assert.Contains(t, html, "Balance outstanding")
	assert.NotContains(t, html, "Location fee")

	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Where("id = ?", invoiceID).
		Updates(map[string]any{"status": invoicedomain.InvoiceStatusPaid, "paid_at": approvedAt}).Error)

	html, err = svc.Render(ctx, app.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "Paid in full")
}

func TestRenderWithoutFeesOrInsurance(t *testing.T) {
	svc, db, node, park := newService(t)
	app := testutil.InsertApplication(t, db, node, park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
		a.ApplicationFee = 0
		a.PermitFee = 0
		a.TotalFee = 0
	})

	html, err := svc.Render(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "No fees required")
	assert.Contains(t, html, "Paid in full")
	assert.NotContains(t, html, "Certificate on file")
}

func TestRenderRequiresApproval(t *testing.T) {
	svc, db, node, park := newService(t)
	ctx := context.Background()

	for _, status := range []applicationdomain.ApplicationStatus{
		applicationdomain.ApplicationStatusPending,
		applicationdomain.ApplicationStatusDisapproved,
	} {
		app := testutil.InsertApplication(t, db, node, park.ID, func(a *applicationdomain.Application) {
			a.Status = status
		})
		_, err := svc.Render(ctx, app.ID)
		assert.ErrorIs(t, err, applicationdomain.ErrInvalidOperation, string(status))
	}

	_, err := svc.Render(ctx, node.Generate())
	assert.ErrorIs(t, err, applicationdomain.ErrApplicationNotFound)

	_, err = svc.Render(ctx, 0)
	assert.ErrorIs(t, err, applicationdomain.ErrInvalidApplicationID)
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "", clockTime(nil))
	assert.Equal(t, "12:05 AM", clockTime(strPtr("00:05")))
	assert.Equal(t, "1:15 PM", clockTime(strPtr("13:15")))
	assert.Equal(t, "noonish", clockTime(strPtr("noonish")))
}
