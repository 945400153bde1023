package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type InvoiceData struct {
	AgencyName    string
	AgencyAddress string
	AgencyEmail   string

	InvoiceNumber     string
	IssueDate         string
	ApplicationNumber string
	EventTitle        string
	EventDates        string
	ParkName          string

	BillToName         string
	BillToOrganization string
	BillToAddress      string
	BillToEmail        string

	Amount    string
	AmountDue string
}

// ReceiptData is an invoice that has been settled.
type ReceiptData struct {
	InvoiceData
	DatePaid string
}
