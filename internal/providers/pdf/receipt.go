package pdf

import (
	"context"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var paidStamp = &props.Color{Red: 24, Green: 120, Blue: 60}

// GenerateReceipt renders proof that the permit fee was settled. The balance row
// always shows AmountDue, which callers set to zero.
func (p *PDFProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	m := newDocument()
	writeHeader(m, "Receipt", data.InvoiceData)
	m.AddRow(10,
		col.New(8),
		text.NewCol(4, "PAID "+data.DatePaid, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: paidStamp,
		}),
	)
	writeLines(m, data.InvoiceData)
	m.AddRow(2, line.NewCol(12))
	writeTotal(m, "Amount billed", data.Amount)
	writeTotal(m, "Amount received", data.Amount)
	writeTotal(m, "Balance", data.AmountDue)
	m.AddRow(14,
		text.NewCol(12, "Keep this receipt with permit "+data.ApplicationNumber+". Park staff may ask to see it on the event date.",
			props.Text{Size: 8, Top: 6, Style: fontstyle.Italic}),
	)
	return generate(m)
}

func writeTotal(m core.Maroto, label string, amount string) {
	m.AddRow(7,
		col.New(7),
		text.NewCol(3, label, props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, amount, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
}
