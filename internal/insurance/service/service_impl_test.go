package service

import (
	"testing"

	"github.com/smallbiznis/permitdesk/internal/config"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) insurancedomain.Service {
	t.Helper()
	holder, err := config.NewStaticCatalogHolder(config.DefaultCatalog())
	require.NoError(t, err)
	return NewService(holder)
}

func TestTierFor(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.TierFor("Wedding")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Tier)
	assert.Equal(t, "$1,000,000 per occurrence", info.LimitText)
}

func TestTierForNormalizesName(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.TierFor("  run-or-WALK event ")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Tier)
	assert.Equal(t, "Run or walk event", info.Activity)
}

func TestTierForDuplicateResolvesToHighestTier(t *testing.T) {
	svc := newTestService(t)

	info, err := svc.TierFor("Photography (commercial)")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Tier)
}

func TestTierForUnknownActivity(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.TierFor("Skydiving")
	assert.ErrorIs(t, err, insurancedomain.ErrActivityNotFound)

	_, err = svc.TierFor("   ")
	assert.ErrorIs(t, err, insurancedomain.ErrActivityNotFound)
}

func TestActivitiesForTier(t *testing.T) {
	svc := newTestService(t)

	listing, err := svc.ActivitiesForTier(3)
	require.NoError(t, err)
	assert.Contains(t, listing.Activities, "Fireworks display")
	assert.NotEmpty(t, listing.LimitText)

	_, err = svc.ActivitiesForTier(4)
	assert.ErrorIs(t, err, insurancedomain.ErrInvalidTier)
	_, err = svc.ActivitiesForTier(-1)
	assert.ErrorIs(t, err, insurancedomain.ErrInvalidTier)
}

func TestActivitiesForTierRoundTrip(t *testing.T) {
	svc := newTestService(t)

	for _, listing := range svc.Tiers() {
		for _, activity := range listing.Activities {
			info, err := svc.TierFor(activity)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, info.Tier, listing.Tier)
		}
	}
}
