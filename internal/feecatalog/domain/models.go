// Package domain describes the allowed application and permit fee amounts.
package domain

// Category names a fee that an applicant may owe.
type Category string

const (
	CategoryApplicationFee Category = "applicationFee"
	CategoryPermitFee      Category = "permitFee"
)

// FeeOption pairs an allowed amount (dollars) with the payment product that collects it.
type FeeOption struct {
	Amount    float64 `json:"amount"`
	ProductID string  `json:"product_id"`
}
