package service

import (
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	"github.com/smallbiznis/permitdesk/internal/config"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/internal/invoice/format"
	"github.com/smallbiznis/permitdesk/internal/invoice/render"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/internal/providers/pdf"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   config.Config
	Repo     invoicedomain.Repository
	AppRepo  applicationdomain.Repository
	ParkSvc  parkdomain.Service
	Renderer render.Renderer
	PDF      pdf.Provider
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	agency   config.AgencyConfig
	repo     invoicedomain.Repository
	appRepo  applicationdomain.Repository
	parkSvc  parkdomain.Service
	renderer render.Renderer
	pdf      pdf.Provider
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		agency:   p.Config.Agency,
		repo:     p.Repo,
		appRepo:  p.AppRepo,
		parkSvc:  p.ParkSvc,
		renderer: p.Renderer,
		pdf:      p.PDF,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	if id <= 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *item, nil
}

func (s *Service) GetByApplication(ctx context.Context, applicationID snowflake.ID) (invoicedomain.Invoice, error) {
	if applicationID <= 0 {
		return invoicedomain.Invoice{}, applicationdomain.ErrInvalidApplicationID
	}
	item, err := s.repo.FindByApplication(ctx, s.db, applicationID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	switch req.Status {
	case "", invoicedomain.InvoiceStatusPending, invoicedomain.InvoiceStatusPaid:
	default:
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
	}

	cursor, err := pagination.ParsePosition(req.PageToken)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	limit := req.Size()
	items, err := s.repo.List(ctx, s.db, invoicedomain.ListFilter{
		Status: req.Status,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *invoicedomain.Invoice) string {
		return pagination.PositionToken(item.ID, item.CreatedAt)
	})
	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return invoicedomain.ListInvoiceResponse{PageInfo: pageInfo, Invoices: invoices}, nil
}

func (s *Service) RenderHTML(ctx context.Context, id snowflake.ID) (string, error) {
	invoice, app, parkName, err := s.loadForRender(ctx, id)
	if err != nil {
		return "", err
	}

	return s.renderer.RenderHTML(render.RenderInput{
		Agency: render.Agency{
			Name:    s.agency.Name,
			Address: s.agency.Address,
			Email:   s.agency.Email,
			Phone:   s.agency.Phone,
		},
		Invoice: render.InvoiceView{
			Number:    invoice.InvoiceNumber,
			Status:    string(invoice.Status),
			Amount:    invoice.Amount,
			CreatedAt: &invoice.CreatedAt,
			PaidAt:    invoice.PaidAt,
		},
		BillTo: render.BillTo{
			Name:         app.ApplicantName(),
			Organization: deref(app.Organization),
			Email:        app.Email,
			Address:      deref(app.Address),
		},
		Permit: render.PermitView{
			ApplicationNumber: app.ApplicationNumber,
			EventTitle:        app.EventTitle,
			EventDates:        []string(app.EventDates),
			ParkName:          parkName,
		},
	})
}

// RenderPDF returns an invoice while payment is due and a receipt once paid.
func (s *Service) RenderPDF(ctx context.Context, id snowflake.ID) (io.Reader, error) {
	invoice, app, parkName, err := s.loadForRender(ctx, id)
	if err != nil {
		return nil, err
	}

	data := pdf.InvoiceData{
		AgencyName:         s.agency.Name,
		AgencyAddress:      s.agency.Address,
		AgencyEmail:        s.agency.Email,
		InvoiceNumber:      invoice.InvoiceNumber,
		IssueDate:          format.Date(&invoice.CreatedAt),
		ApplicationNumber:  app.ApplicationNumber,
		EventTitle:         app.EventTitle,
		EventDates:         strings.Join(app.EventDates, ", "),
		ParkName:           parkName,
		BillToName:         app.ApplicantName(),
		BillToOrganization: deref(app.Organization),
		BillToAddress:      deref(app.Address),
		BillToEmail:        app.Email,
		Amount:             format.Cents(invoice.Amount),
		AmountDue:          format.Cents(invoice.Amount),
	}
	if invoice.IsPaid() {
		data.AmountDue = format.Cents(0)
		return s.pdf.GenerateReceipt(ctx, pdf.ReceiptData{
			InvoiceData: data,
			DatePaid:    format.Date(invoice.PaidAt),
		})
	}
	return s.pdf.GenerateInvoice(ctx, data)
}

func (s *Service) loadForRender(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, applicationdomain.Application, string, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, applicationdomain.Application{}, "", err
	}
	app, err := s.appRepo.FindByID(ctx, s.db, invoice.ApplicationID)
	if err != nil {
		return invoicedomain.Invoice{}, applicationdomain.Application{}, "", err
	}
	if app == nil {
		return invoicedomain.Invoice{}, applicationdomain.Application{}, "", applicationdomain.ErrApplicationNotFound
	}

	parkName := ""
	if park, err := s.parkSvc.Get(ctx, app.ParkID); err == nil {
		parkName = park.Name
	} else {
		s.log.Debug("park lookup failed while rendering invoice", zap.Error(err))
	}
	return invoice, *app, parkName, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

