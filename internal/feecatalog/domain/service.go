package domain

import "errors"

type Service interface {
	Categories() []Category
	FeeOptionsFor(category Category) ([]FeeOption, error)
	ProductFor(category Category, amount float64) (string, error)
}

var (
	ErrUnknownCategory = errors.New("unknown_fee_category")
	ErrUnknownAmount   = errors.New("invalid_fee_amount")
)
