package service

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/permitdesk/internal/config"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
)

type Service struct {
	catalog *config.CatalogHolder
}

func NewService(catalog *config.CatalogHolder) insurancedomain.Service {
	return &Service{catalog: catalog}
}

// TierFor matches activity names by slug, so "Run or Walk Event" and "run-or-walk event"
// resolve the same entry. An activity listed under several tiers resolves to the highest.
func (s *Service) TierFor(activityName string) (insurancedomain.TierInfo, error) {
	key := slug.Make(strings.TrimSpace(activityName))
	if key == "" {
		return insurancedomain.TierInfo{}, insurancedomain.ErrActivityNotFound
	}

	var (
		match insurancedomain.TierInfo
		found bool
	)
	for _, tier := range s.catalog.Get().Insurance {
		for _, activity := range tier.Activities {
			if slug.Make(activity) != key {
				continue
			}
			if !found || tier.Tier > match.Tier {
				match = insurancedomain.TierInfo{
					Tier:      tier.Tier,
					Activity:  activity,
					LimitText: tier.LimitText,
				}
				found = true
			}
		}
	}
	if !found {
		return insurancedomain.TierInfo{}, insurancedomain.ErrActivityNotFound
	}
	return match, nil
}

func (s *Service) ActivitiesForTier(tier int) (insurancedomain.TierListing, error) {
	if tier < config.MinInsuranceTier || tier > config.MaxInsuranceTier {
		return insurancedomain.TierListing{}, insurancedomain.ErrInvalidTier
	}
	for _, item := range s.catalog.Get().Insurance {
		if item.Tier == tier {
			return toListing(item), nil
		}
	}
	return insurancedomain.TierListing{Tier: tier, Activities: []string{}}, nil
}

func (s *Service) Tiers() []insurancedomain.TierListing {
	tiers := s.catalog.Get().Insurance
	out := make([]insurancedomain.TierListing, 0, len(tiers))
	for _, item := range tiers {
		out = append(out, toListing(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

func toListing(item config.InsuranceTier) insurancedomain.TierListing {
	activities := item.Activities
	if activities == nil {
		activities = []string{}
	}
	return insurancedomain.TierListing{
		Tier:       item.Tier,
		LimitText:  item.LimitText,
		Activities: activities,
	}
}
