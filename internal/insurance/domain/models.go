// Package domain holds the activity to insurance-tier reference table.
package domain

import "errors"

// TierInfo is the coverage requirement for one activity.
type TierInfo struct {
	Tier      int    `json:"tier"`
	Activity  string `json:"activity"`
	LimitText string `json:"limit_text"`
}

// TierListing groups the activities of one tier.
type TierListing struct {
	Tier       int      `json:"tier"`
	LimitText  string   `json:"limit_text"`
	Activities []string `json:"activities"`
}

type Service interface {
	TierFor(activityName string) (TierInfo, error)
	ActivitiesForTier(tier int) (TierListing, error)
	Tiers() []TierListing
}

var (
	ErrActivityNotFound = errors.New("activity_not_found")
	ErrInvalidTier      = errors.New("invalid_tier")
)
