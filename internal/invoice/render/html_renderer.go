package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/smallbiznis/permitdesk/internal/invoice/format"
)

type Agency struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

type InvoiceView struct {
	Number    string
	Status    string
	Amount    int64
	CreatedAt *time.Time
	PaidAt    *time.Time
}

type BillTo struct {
	Name         string
	Organization string
	Email        string
	Address      string
}

type PermitView struct {
	ApplicationNumber string
	EventTitle        string
	EventDates        []string
	ParkName          string
}

type RenderInput struct {
	Agency  Agency
	Invoice InvoiceView
	BillTo  BillTo
	Permit  PermitView
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"money": format.Cents,
		"date":  format.Date,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	if input.Agency.Name == "" {
		input.Agency.Name = "Special Use Permits"
	}
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body { margin: 0; padding: 40px; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; color: #1a1f36; background: #f7f9fc; }
    .card { background: #fff; max-width: 760px; margin: 0 auto; padding: 56px; border-radius: 4px; box-shadow: 0 2px 5px rgba(0,0,0,0.04); }
    .header { display: flex; justify-content: space-between; margin-bottom: 36px; }
    h1 { margin: 0; font-size: 24px; }
    .agency { text-align: right; font-size: 13px; color: #697386; line-height: 1.5; }
    .agency strong { color: #1a1f36; font-size: 15px; }
    .grid { display: flex; justify-content: space-between; margin-bottom: 32px; }
    .label { font-size: 11px; text-transform: uppercase; color: #8792a2; margin-bottom: 6px; font-weight: 600; letter-spacing: 0.3px; }
    .value { font-size: 14px; line-height: 1.5; }
    .amount { font-size: 32px; font-weight: 700; margin-bottom: 32px; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
    th { text-align: left; text-transform: uppercase; font-size: 11px; color: #8792a2; border-bottom: 1px solid #e3e8ee; padding: 10px 0; }
    td { padding: 16px 0; border-bottom: 1px solid #e3e8ee; font-size: 14px; vertical-align: top; }
    .right { text-align: right; }
    .sub { font-size: 12px; color: #697386; }
    .stamp { display: inline-block; padding: 4px 12px; border: 2px solid #0e9f6e; color: #0e9f6e; font-weight: 700; text-transform: uppercase; letter-spacing: 1px; }
    .pending { border-color: #c27803; color: #c27803; }
    @media print { body { background: #fff; padding: 0; } .card { box-shadow: none; } }
  </style>
</head>
<body>
  <div class="card">
    <div class="header">
      <div>
        <h1>Invoice</h1>
        <div class="label" style="margin-top: 12px;">Invoice number</div>
        <div class="value">{{.Invoice.Number}}</div>
      </div>
      <div class="agency">
        <strong>{{.Agency.Name}}</strong><br>
        {{if .Agency.Address}}{{.Agency.Address}}<br>{{end}}
        {{if .Agency.Email}}{{.Agency.Email}}<br>{{end}}
        {{if .Agency.Phone}}{{.Agency.Phone}}{{end}}
      </div>
    </div>

    <div class="grid">
      <div>
        <div class="label">Bill to</div>
        <div class="value">
          <strong>{{.BillTo.Name}}</strong><br>
          {{if .BillTo.Organization}}{{.BillTo.Organization}}<br>{{end}}
          {{if .BillTo.Address}}{{.BillTo.Address}}<br>{{end}}
          {{.BillTo.Email}}
        </div>
      </div>
      <div style="flex: 0 0 220px;">
        <div class="label">Date issued</div>
        <div class="value">{{date .Invoice.CreatedAt}}</div>
        <div class="label" style="margin-top: 16px;">Status</div>
        <div class="value">
          {{if eq .Invoice.Status "paid"}}<span class="stamp">Paid {{date .Invoice.PaidAt}}</span>{{else}}<span class="stamp pending">Payment due</span>{{end}}
        </div>
      </div>
    </div>

    <div class="amount">{{money .Invoice.Amount}}</div>

    <table>
      <thead>
        <tr><th style="width: 70%;">Description</th><th class="right">Amount</th></tr>
      </thead>
      <tbody>
        <tr>
          <td>
            <div><strong>Special use permit fee</strong></div>
            <div class="sub">Application {{.Permit.ApplicationNumber}} &middot; {{.Permit.EventTitle}}</div>
            {{if .Permit.ParkName}}<div class="sub">{{.Permit.ParkName}}</div>{{end}}
            {{if .Permit.EventDates}}<div class="sub">{{range $i, $d := .Permit.EventDates}}{{if $i}}, {{end}}{{$d}}{{end}}</div>{{end}}
          </td>
          <td class="right">{{money .Invoice.Amount}}</td>
        </tr>
      </tbody>
    </table>

    <div class="right value"><strong>Amount due: {{if eq .Invoice.Status "paid"}}{{money 0}}{{else}}{{money .Invoice.Amount}}{{end}}</strong></div>
  </div>
</body>
</html>
`
