package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	m := newDocument()
	writeHeader(m, "Invoice", data)
	writeLines(m, data)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Amount due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.AmountDue, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	return generate(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func writeHeader(m core.Maroto, title string, data InvoiceData) {
	m.AddRow(12,
		text.NewCol(8, title, props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, data.AgencyName, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(12,
		col.New(8).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Size: 9}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New(data.AgencyAddress, props.Text{Size: 8, Align: align.Right}),
			text.New(data.AgencyEmail, props.Text{Size: 8, Top: 4, Align: align.Right}),
		),
	)
	m.AddRow(28,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
			text.New(data.BillToName, props.Text{Size: 9, Top: 9}),
			text.New(data.BillToOrganization, props.Text{Size: 9, Top: 13}),
			text.New(data.BillToAddress, props.Text{Size: 9, Top: 17}),
			text.New(data.BillToEmail, props.Text{Size: 9, Top: 21}),
		),
		col.New(6).Add(
			text.New("Permit application", props.Text{Style: fontstyle.Bold, Size: 9, Top: 4}),
			text.New(data.ApplicationNumber, props.Text{Size: 9, Top: 9}),
			text.New(data.ParkName, props.Text{Size: 9, Top: 13}),
			text.New(data.EventDates, props.Text{Size: 9, Top: 17}),
		),
	)
}

func writeLines(m core.Maroto, data InvoiceData) {
	m.AddRow(10,
		text.NewCol(10, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		col.New(10).Add(
			text.New("Special use permit fee", props.Text{Size: 9}),
			text.New(data.EventTitle, props.Text{Size: 8, Top: 4}),
		),
		text.NewCol(2, data.Amount, props.Text{Size: 9, Align: align.Right}),
	)
}

func generate(m core.Maroto) (io.Reader, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
