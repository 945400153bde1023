package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() InvoiceData {
	return InvoiceData{
		AgencyName:        "State Parks",
		InvoiceNumber:     "INV-ABC123",
		IssueDate:         "April 2, 2026",
		ApplicationNumber: "SUP-2026-XYZ",
		EventTitle:        "Spring Festival",
		BillToName:        "Jane Doe",
		BillToEmail:       "jane@example.org",
		Amount:            "$100.00",
		AmountDue:         "$100.00",
	}
}

func TestGenerateInvoiceProducesPDF(t *testing.T) {
	r, err := New().GenerateInvoice(context.Background(), sampleInvoice())
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestGenerateReceiptProducesPDF(t *testing.T) {
	r, err := New().GenerateReceipt(context.Background(), ReceiptData{
		InvoiceData: sampleInvoice(),
		DatePaid:    "April 9, 2026",
	})
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}
