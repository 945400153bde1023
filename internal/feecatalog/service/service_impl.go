package service

import (
	"math"
	"strings"

	"github.com/smallbiznis/permitdesk/internal/config"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
)

type Service struct {
	catalog *config.CatalogHolder
}

func NewService(catalog *config.CatalogHolder) feedomain.Service {
	return &Service{catalog: catalog}
}

func (s *Service) Categories() []feedomain.Category {
	return []feedomain.Category{
		feedomain.CategoryApplicationFee,
		feedomain.CategoryPermitFee,
	}
}

func (s *Service) FeeOptionsFor(category feedomain.Category) ([]feedomain.FeeOption, error) {
	options, err := s.lookup(category)
	if err != nil {
		return nil, err
	}

	out := make([]feedomain.FeeOption, 0, len(options))
	for _, opt := range options {
		out = append(out, feedomain.FeeOption{
			Amount:    opt.Amount,
			ProductID: opt.ProductID,
		})
	}
	return out, nil
}

func (s *Service) ProductFor(category feedomain.Category, amount float64) (string, error) {
	options, err := s.lookup(category)
	if err != nil {
		return "", err
	}
	for _, opt := range options {
		if sameCents(opt.Amount, amount) {
			return opt.ProductID, nil
		}
	}
	return "", feedomain.ErrUnknownAmount
}

func (s *Service) lookup(category feedomain.Category) ([]config.FeeOption, error) {
	fees := s.catalog.Get().Fees
	switch feedomain.Category(strings.TrimSpace(string(category))) {
	case feedomain.CategoryApplicationFee:
		return fees.ApplicationFee, nil
	case feedomain.CategoryPermitFee:
		return fees.PermitFee, nil
	default:
		return nil, feedomain.ErrUnknownCategory
	}
}

func sameCents(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
