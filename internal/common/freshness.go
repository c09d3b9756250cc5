// Package common provides shared utilities for FVS
package common

import "time"

// Freshness TTLs for persisted pipeline artifacts
const (
	FreshnessScore        = 24 * time.Hour     // fundamental scores recompute daily
	FreshnessFundamentals = 7 * 24 * time.Hour // raw statement data moves with filings
	FreshnessBrief        = 24 * time.Hour     // one brief per calendar date
	FreshnessSignals      = 3 * 24 * time.Hour // candidate window for brief stage 1
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
