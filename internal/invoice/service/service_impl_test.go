package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	applicationrepository "github.com/smallbiznis/permitdesk/internal/application/repository"
	"github.com/smallbiznis/permitdesk/internal/config"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/internal/invoice/render"
	"github.com/smallbiznis/permitdesk/internal/invoice/repository"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	parkservice "github.com/smallbiznis/permitdesk/internal/park/service"
	"github.com/smallbiznis/permitdesk/internal/providers/pdf"
	"github.com/smallbiznis/permitdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recordingPDF struct {
	invoices []pdf.InvoiceData
	receipts []pdf.ReceiptData
}

func (r *recordingPDF) GenerateInvoice(_ context.Context, data pdf.InvoiceData) (io.Reader, error) {
	r.invoices = append(r.invoices, data)
	return bytes.NewReader([]byte("%PDF-invoice")), nil
}

func (r *recordingPDF) GenerateReceipt(_ context.Context, data pdf.ReceiptData) (io.Reader, error) {
	r.receipts = append(r.receipts, data)
	return bytes.NewReader([]byte("%PDF-receipt")), nil
}

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	pdf  *recordingPDF
	svc  invoicedomain.Service
	app  applicationdomain.Application
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zaptest.NewLogger(t)
	recorder := &recordingPDF{}

	cfg := config.Config{Agency: config.AgencyConfig{Name: "State Parks", Email: "permits@example.org"}}
	svc := NewService(ServiceParam{
		DB:       db,
		Log:      log,
		Config:   cfg,
		Repo:     repository.Provide(),
		AppRepo:  applicationrepository.Provide(),
		ParkSvc:  parkservice.NewService(db, log),
		Renderer: render.NewRenderer(),
		PDF:      recorder,
	})

	park := testutil.InsertPark(t, db, node, "Riverbend State Park", parkdomain.ParkStatusActive)
	app := testutil.InsertApplication(t, db, node, park.ID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
	})

	return &fixture{db: db, node: node, pdf: recorder, svc: svc, app: app}
}

func (f *fixture) insertInvoice(t *testing.T, applicationID snowflake.ID, status invoicedomain.InvoiceStatus, createdAt time.Time) invoicedomain.Invoice {
	t.Helper()
	id := f.node.Generate()
	inv := invoicedomain.Invoice{
		ID:            id,
		InvoiceNumber: invoicedomain.NumberFor(id),
		ApplicationID: applicationID,
		Amount:        3500,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if status == invoicedomain.InvoiceStatusPaid {
		paidAt := createdAt.Add(time.Hour)
		inv.PaidAt = &paidAt
	}
	require.NoError(t, f.db.Create(&inv).Error)
	return inv
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.insertInvoice(t, f.app.ID, invoicedomain.InvoiceStatusPending, time.Now().UTC())

	got, err := f.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.EqualValues(t, 3500, got.Amount)

	byApp, err := f.svc.GetByApplication(ctx, f.app.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byApp.ID)

	_, err = f.svc.Get(ctx, f.node.Generate())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)

	_, err = f.svc.Get(ctx, 0)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInvoiceID)

	_, err = f.svc.GetByApplication(ctx, f.node.Generate())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		f.insertInvoice(t, f.node.Generate(), invoicedomain.InvoiceStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	f.insertInvoice(t, f.node.Generate(), invoicedomain.InvoiceStatusPaid, base)

	req := invoicedomain.ListInvoiceRequest{Status: invoicedomain.InvoiceStatusPending}
	req.PageSize = 2
	page, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.Invoices, 2)
	assert.True(t, page.HasMore)

	req.PageToken = page.NextPageToken
	page, err = f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.Invoices, 1)
	assert.False(t, page.HasMore)

	all, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Invoices, 4)

	_, err = f.svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: "void"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)
}

func TestRenderHTML(t *testing.T) {
	f := newFixture(t)
	inv := f.insertInvoice(t, f.app.ID, invoicedomain.InvoiceStatusPending, time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC))

	html, err := f.svc.RenderHTML(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Contains(t, html, inv.InvoiceNumber)
	assert.Contains(t, html, "$35.00")
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Riverbend State Park")
	assert.Contains(t, html, f.app.ApplicationNumber)
}

func TestRenderPDFChoosesDocumentByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	pending := f.insertInvoice(t, f.app.ID, invoicedomain.InvoiceStatusPending, created)
	_, err := f.svc.RenderPDF(ctx, pending.ID)
	require.NoError(t, err)
	require.Len(t, f.pdf.invoices, 1)
	assert.Equal(t, "$35.00", f.pdf.invoices[0].AmountDue)
	assert.Equal(t, "April 2, 2026", f.pdf.invoices[0].IssueDate)
	assert.Equal(t, "Riverbend State Park", f.pdf.invoices[0].ParkName)

	other := testutil.InsertApplication(t, f.db, f.node, f.app.ParkID, func(a *applicationdomain.Application) {
		a.Status = applicationdomain.ApplicationStatusApproved
	})
	paid := f.insertInvoice(t, other.ID, invoicedomain.InvoiceStatusPaid, created)
	_, err = f.svc.RenderPDF(ctx, paid.ID)
	require.NoError(t, err)
	require.Len(t, f.pdf.receipts, 1)
	assert.Equal(t, "$0.00", f.pdf.receipts[0].AmountDue)
	assert.Equal(t, "$35.00", f.pdf.receipts[0].Amount)
	assert.Equal(t, "April 2, 2026", f.pdf.receipts[0].DatePaid)
}
