package domain

import (
	"math"

	"github.com/bwmarrin/snowflake"
)

// ToCents converts a dollar amount to minor units, rounding half away from zero.
func ToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

type FeeStatus struct {
	Amount   float64 `json:"amount"`
	Required bool    `json:"required"`
	Paid     bool    `json:"paid"`
}

type PaymentStatus struct {
	ApplicationID  snowflake.ID  `json:"application_id"`
	ApplicationFee FeeStatus     `json:"application_fee"`
	PermitFee      FeeStatus     `json:"permit_fee"`
	LocationFee    FeeStatus     `json:"location_fee"`
	InvoiceID      *snowflake.ID `json:"invoice_id,omitempty"`
	Complete       bool          `json:"complete"`
}

// Payment evaluates each fee category independently. The permit fee counts as paid
// only through its invoice, so invoicePaid must reflect the invoice status.
func (a Application) Payment(invoiceID *snowflake.ID, invoicePaid bool) PaymentStatus {
	status := PaymentStatus{
		ApplicationID: a.ID,
		ApplicationFee: FeeStatus{
			Amount:   a.ApplicationFee,
			Required: a.ApplicationFee > 0,
			Paid:     a.IsPaid,
		},
		PermitFee: FeeStatus{
			Amount:   a.PermitFee,
			Required: a.PermitFee > 0,
			Paid:     invoiceID != nil && invoicePaid,
		},
		LocationFee: FeeStatus{
			Amount:   a.LocationFee,
			Required: a.LocationFeeRequired,
			Paid:     a.LocationFeePaid,
		},
		InvoiceID: invoiceID,
	}

	status.Complete = true
	for _, fee := range []FeeStatus{status.ApplicationFee, status.PermitFee, status.LocationFee} {
		if fee.Required && !fee.Paid {
			status.Complete = false
		}
	}
	return status
}
