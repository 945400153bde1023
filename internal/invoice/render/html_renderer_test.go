package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPending(t *testing.T) {
	created := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	html, err := NewRenderer().RenderHTML(RenderInput{
		Agency:  Agency{Name: "State Parks"},
		Invoice: InvoiceView{Number: "INV-ABC", Status: "pending", Amount: 10000, CreatedAt: &created},
		BillTo:  BillTo{Name: "Jane Doe", Email: "jane@example.org"},
		Permit:  PermitView{ApplicationNumber: "SUP-2026-XYZ", EventTitle: "Spring <Picnic>", EventDates: []string{"2026-05-01", "2026-05-02"}},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "INV-ABC")
	assert.Contains(t, html, "$100.00")
	assert.Contains(t, html, "Payment due")
	assert.Contains(t, html, "2026-05-01, 2026-05-02")
	assert.Contains(t, html, "Spring &lt;Picnic&gt;")
	assert.Contains(t, html, "April 2, 2026")
}

func TestRenderHTMLPaid(t *testing.T) {
	paid := time.Date(2026, 4, 9, 9, 0, 0, 0, time.UTC)
	html, err := NewRenderer().RenderHTML(RenderInput{
		Invoice: InvoiceView{Number: "INV-1", Status: "paid", Amount: 3500, PaidAt: &paid},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Paid April 9, 2026")
	assert.Contains(t, html, "Amount due: $0.00")
	assert.Contains(t, html, "Special Use Permits")
}
