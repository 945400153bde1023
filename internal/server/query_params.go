package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

func parsePathID(value string, invalid error) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, invalid
	}
	return parsed, nil
}

// parseOptionalTime accepts RFC3339 or a bare date; a bare end date covers the whole day.
func parseOptionalTime(field string, value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		}
		return &parsed, nil
	}
	return nil, newValidationError(field, "invalid_"+field, "invalid "+field)
}
