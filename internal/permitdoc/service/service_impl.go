package service

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	"github.com/smallbiznis/permitdesk/internal/config"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	"github.com/smallbiznis/permitdesk/internal/invoice/format"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	permitdomain "github.com/smallbiznis/permitdesk/internal/permitdoc/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	AppRepo     applicationdomain.Repository
	InvoiceRepo invoicedomain.Repository
	ParkSvc     parkdomain.Service
	InsSvc      insurancedomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	agency config.AgencyConfig
	tpl    *template.Template

	appRepo     applicationdomain.Repository
	invoiceRepo invoicedomain.Repository
	parkSvc     parkdomain.Service
	insSvc      insurancedomain.Service
}

func NewService(p ServiceParam) permitdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("permitdoc.service"),
		agency: p.Config.Agency,
		tpl:    template.Must(template.New("permit").Parse(permitHTMLTemplate)),

		appRepo:     p.AppRepo,
		invoiceRepo: p.InvoiceRepo,
		parkSvc:     p.ParkSvc,
		insSvc:      p.InsSvc,
	}
}

type agencyView struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

type feeRow struct {
	Label  string
	Amount string
	Paid   bool
}

type insuranceView struct {
	Carrier   string
	Activity  string
	Tier      int
	LimitText string
	Document  bool
}

type permitView struct {
	Agency       agencyView
	PermitNumber string
	IssuedOn     string

	HolderName   string
	Organization string
	Email        string
	Phone        string

	EventTitle  string
	Description string
	EventDates  []string
	StartTime   string
	EndTime     string
	SetupTime   string
	Attendees   int
	Requests    string

	ParkName string
	Location string

	Insurance *insuranceView

	Fees     []feeRow
	Total    string
	Complete bool
}

func (s *Service) Render(ctx context.Context, applicationID snowflake.ID) (string, error) {
	if applicationID <= 0 {
		return "", applicationdomain.ErrInvalidApplicationID
	}

	app, err := s.appRepo.FindByID(ctx, s.db, applicationID)
	if err != nil {
		return "", err
	}
	if app == nil {
		return "", applicationdomain.ErrApplicationNotFound
	}
	if app.Status != applicationdomain.ApplicationStatusApproved {
		return "", applicationdomain.ErrInvalidOperation
	}

	invoice, err := s.invoiceRepo.FindByApplication(ctx, s.db, app.ID)
	if err != nil {
		return "", err
	}
	var payment applicationdomain.PaymentStatus
	if invoice != nil {
		invoiceID := invoice.ID
		payment = app.Payment(&invoiceID, invoice.IsPaid())
	} else {
		payment = app.Payment(nil, false)
	}

	view := permitView{
		Agency: agencyView{
			Name:    s.agency.Name,
			Address: s.agency.Address,
			Email:   s.agency.Email,
			Phone:   s.agency.Phone,
		},
		PermitNumber: app.ApplicationNumber,
		IssuedOn:     format.Date(app.ApprovedAt),
		HolderName:   app.ApplicantName(),
		Organization: deref(app.Organization),
		Email:        app.Email,
		Phone:        deref(app.Phone),
		EventTitle:   app.EventTitle,
		Description:  deref(app.EventDescription),
		EventDates:   eventDates(app.EventDates),
		StartTime:    clockTime(app.StartTime),
		EndTime:      clockTime(app.EndTime),
		SetupTime:    clockTime(app.SetupTime),
		Attendees:    app.AttendeeCount,
		Requests:     deref(app.SpecialRequests),
		Location:     location(*app),
		Insurance:    s.insurance(*app),
		Fees:         fees(payment),
		Total:        format.Dollars(app.TotalFee),
		Complete:     payment.Complete,
	}
	if view.Agency.Name == "" {
		view.Agency.Name = "Special Use Permits"
	}

	if park, err := s.parkSvc.Get(ctx, app.ParkID); err != nil {
		s.log.Debug("park lookup failed", zap.String("park_id", app.ParkID.String()), zap.Error(err))
	} else {
		view.ParkName = park.Name
	}

	var buf bytes.Buffer
	if err := s.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) insurance(app applicationdomain.Application) *insuranceView {
	if app.InsuranceTier == nil && app.InsuranceCarrier == nil && app.InsuranceActivity == nil {
		return nil
	}
	view := &insuranceView{
		Carrier:  deref(app.InsuranceCarrier),
		Activity: deref(app.InsuranceActivity),
		Document: app.InsuranceDocumentKey != nil,
	}
	if app.InsuranceTier != nil {
		view.Tier = *app.InsuranceTier
		if listing, err := s.insSvc.ActivitiesForTier(*app.InsuranceTier); err == nil {
			view.LimitText = listing.LimitText
		}
	}
	return view
}

func fees(payment applicationdomain.PaymentStatus) []feeRow {
	rows := make([]feeRow, 0, 3)
	for _, fee := range []struct {
		label  string
		status applicationdomain.FeeStatus
	}{
		{"Application fee", payment.ApplicationFee},
		{"Permit fee", payment.PermitFee},
		{"Location fee", payment.LocationFee},
	} {
		if !fee.status.Required {
			continue
		}
		rows = append(rows, feeRow{
			Label:  fee.label,
			Amount: format.Dollars(fee.status.Amount),
			Paid:   fee.status.Paid,
		})
	}
	return rows
}

func location(app applicationdomain.Application) string {
	if name := deref(app.LocationName); name != "" {
		return name
	}
	return deref(app.CustomLocation)
}

func eventDates(dates []string) []string {
	out := make([]string, 0, len(dates))
	for _, raw := range dates {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			out = append(out, d.Format("Monday, January 2, 2006"))
			continue
		}
		out = append(out, raw)
	}
	return out
}

// clockTime renders a stored "15:04" value as "3:04 PM".
func clockTime(value *string) string {
	raw := deref(value)
	if raw == "" {
		return ""
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return raw
	}
	return t.Format("3:04 PM")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

const permitHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Special Use Permit {{.PermitNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body { margin: 0; padding: 40px; font-family: Georgia, "Times New Roman", serif; color: #1a1f36; background: #f7f9fc; }
    .sheet { background: #fff; max-width: 800px; margin: 0 auto; padding: 56px; border: 3px double #1a1f36; }
    .header { text-align: center; border-bottom: 1px solid #c1c9d2; padding-bottom: 20px; margin-bottom: 28px; }
    .header h1 { margin: 8px 0 4px; font-size: 26px; letter-spacing: 1px; text-transform: uppercase; }
    .agency { font-size: 13px; color: #4f566b; }
    .meta { display: flex; justify-content: space-between; font-size: 14px; margin-bottom: 24px; }
    h2 { font-size: 13px; text-transform: uppercase; letter-spacing: 0.5px; color: #4f566b; border-bottom: 1px solid #e3e8ee; padding-bottom: 6px; margin: 28px 0 12px; }
    dl { display: grid; grid-template-columns: 180px 1fr; gap: 6px 16px; margin: 0; font-size: 14px; }
    dt { color: #697386; }
    dd { margin: 0; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    td, th { padding: 8px 0; border-bottom: 1px solid #e3e8ee; text-align: left; }
    .right { text-align: right; }
    .paid { color: #0e9f6e; font-weight: 700; }
    .due { color: #c27803; font-weight: 700; }
    .signature { margin-top: 56px; display: flex; justify-content: space-between; font-size: 13px; }
    .signature div { width: 45%; border-top: 1px solid #1a1f36; padding-top: 6px; }
    @media print { body { background: #fff; padding: 0; } }
  </style>
</head>
<body>
  <div class="sheet">
    <div class="header">
      <div class="agency"><strong>{{.Agency.Name}}</strong>{{if .Agency.Address}} &middot; {{.Agency.Address}}{{end}}</div>
      <h1>Special Use Permit</h1>
      <div class="agency">{{if .Agency.Email}}{{.Agency.Email}}{{end}}{{if .Agency.Phone}} &middot; {{.Agency.Phone}}{{end}}</div>
    </div>

    <div class="meta">
      <div><strong>Permit number:</strong> {{.PermitNumber}}</div>
      <div><strong>Issued:</strong> {{.IssuedOn}}</div>
    </div>

    <h2>Permittee</h2>
    <dl>
      <dt>Name</dt><dd>{{.HolderName}}</dd>
      {{if .Organization}}<dt>Organization</dt><dd>{{.Organization}}</dd>{{end}}
      <dt>Email</dt><dd>{{.Email}}</dd>
      {{if .Phone}}<dt>Phone</dt><dd>{{.Phone}}</dd>{{end}}
    </dl>

    <h2>Event</h2>
    <dl>
      <dt>Title</dt><dd>{{.EventTitle}}</dd>
      {{if .Description}}<dt>Description</dt><dd>{{.Description}}</dd>{{end}}
      <dt>Park</dt><dd>{{if .ParkName}}{{.ParkName}}{{else}}-{{end}}</dd>
      {{if .Location}}<dt>Location</dt><dd>{{.Location}}</dd>{{end}}
      <dt>Date(s)</dt><dd>{{range $i, $d := .EventDates}}{{if $i}}<br>{{end}}{{$d}}{{end}}</dd>
      {{if .SetupTime}}<dt>Setup begins</dt><dd>{{.SetupTime}}</dd>{{end}}
      {{if .StartTime}}<dt>Event hours</dt><dd>{{.StartTime}}{{if .EndTime}} to {{.EndTime}}{{end}}</dd>{{end}}
      <dt>Expected attendance</dt><dd>{{.Attendees}}</dd>
      {{if .Requests}}<dt>Special requests</dt><dd>{{.Requests}}</dd>{{end}}
    </dl>

    {{with .Insurance}}
    <h2>Insurance</h2>
    <dl>
      {{if .Carrier}}<dt>Carrier</dt><dd>{{.Carrier}}</dd>{{end}}
      {{if .Activity}}<dt>Activity</dt><dd>{{.Activity}}</dd>{{end}}
      {{if .Tier}}<dt>Required coverage</dt><dd>Tier {{.Tier}}{{if .LimitText}}: {{.LimitText}}{{end}}</dd>{{end}}
      <dt>Certificate on file</dt><dd>{{if .Document}}Yes{{else}}No{{end}}</dd>
    </dl>
    {{end}}

    <h2>Fees</h2>
    <table>
      <tbody>
        {{range .Fees}}
        <tr>
          <td>{{.Label}}</td>
          <td class="right">{{.Amount}}</td>
          <td class="right">{{if .Paid}}<span class="paid">Paid</span>{{else}}<span class="due">Due</span>{{end}}</td>
        </tr>
        {{else}}
        <tr><td colspan="3">No fees required</td></tr>
        {{end}}
        <tr><th>Total</th><th class="right">{{.Total}}</th><th></th></tr>
      </tbody>
    </table>
    <p>Payment status: {{if .Complete}}<span class="paid">Paid in full</span>{{else}}<span class="due">Balance outstanding</span>{{end}}</p>

    <div class="signature">
      <div>Authorized by</div>
      <div>Permittee</div>
    </div>
  </div>
</body>
</html>
`
