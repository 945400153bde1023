package service

import (
	"testing"

	"github.com/smallbiznis/permitdesk/internal/config"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) feedomain.Service {
	t.Helper()
	holder, err := config.NewStaticCatalogHolder(config.DefaultCatalog())
	require.NoError(t, err)
	return NewService(holder)
}

func TestFeeOptionsForPermitFeeIncludesDefault(t *testing.T) {
	svc := newTestService(t)

	options, err := svc.FeeOptionsFor(feedomain.CategoryPermitFee)
	require.NoError(t, err)

	var found *feedomain.FeeOption
	for i := range options {
		if options[i].Amount == 35 {
			found = &options[i]
		}
	}
	require.NotNil(t, found, "permit fee options must include 35")
	assert.NotEmpty(t, found.ProductID)
}

func TestFeeOptionsForApplicationFee(t *testing.T) {
	svc := newTestService(t)

	options, err := svc.FeeOptionsFor(feedomain.CategoryApplicationFee)
	require.NoError(t, err)
	assert.NotEmpty(t, options)
	for _, opt := range options {
		assert.Greater(t, opt.Amount, 0.0)
		assert.NotEmpty(t, opt.ProductID)
	}
}

func TestFeeOptionsForUnknownCategory(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.FeeOptionsFor("locationFee")
	assert.ErrorIs(t, err, feedomain.ErrUnknownCategory)
}

func TestProductFor(t *testing.T) {
	svc := newTestService(t)

	productID, err := svc.ProductFor(feedomain.CategoryPermitFee, 100.00)
	require.NoError(t, err)
	assert.Equal(t, "prod_permit_fee_100", productID)

	_, err = svc.ProductFor(feedomain.CategoryPermitFee, 36)
	assert.ErrorIs(t, err, feedomain.ErrUnknownAmount)

	_, err = svc.ProductFor("bogus", 35)
	assert.ErrorIs(t, err, feedomain.ErrUnknownCategory)
}
