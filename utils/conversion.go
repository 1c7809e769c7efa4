package utils

import (
	"fmt"
	"time"
)

// ParseUTCTime parses an ISO-8601 (RFC 3339) timestamp and normalizes it to
// UTC. Offsets are accepted and converted; naive strings are rejected.
func ParseUTCTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

// ParseUTCRange parses a start/end timestamp pair, returning both in UTC.
// Range ordering is not checked here; that is the engine's concern.
func ParseUTCRange(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := ParseUTCTime(startValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseUTCTime(endValue)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// FormatUTCTime renders t as an RFC 3339 UTC string for responses.
func FormatUTCTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
