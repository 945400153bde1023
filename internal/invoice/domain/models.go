// Package domain contains the permit fee invoice created when an application is approved.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice records the permit fee owed for one application. Amount is in cents.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	InvoiceNumber string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_number" json:"invoice_number"`
	ApplicationID snowflake.ID  `gorm:"not null;uniqueIndex:ux_invoices_application" json:"application_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Status        InvoiceStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
	PaidAt        *time.Time    `json:"paid_at"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

func (i Invoice) IsPaid() bool { return i.Status == InvoiceStatusPaid }

// NumberFor derives the printable invoice number from the invoice id.
func NumberFor(id snowflake.ID) string {
	return "INV-" + strings.ToUpper(id.Base36())
}
