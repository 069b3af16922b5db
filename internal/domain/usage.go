package domain

import (
	"context"
	"time"
)

// Usage counter names accepted by UsageRepository.Increment.
const (
	CounterSubmissions   = "submissions"
	CounterRelayFailures = "relay_failures"
	CounterDeniedCredits = "denied_credits"
	CounterDeniedPremium = "denied_premium"
	CounterSignups       = "signups"
)

// UsageDay is one day of aggregate platform counters. Counters feed the
// admin console only; nothing in the access policy reads them back.
type UsageDay struct {
	Day           string
	Submissions   int
	RelayFailures int
	DeniedCredits int
	DeniedPremium int
	Signups       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UsageDayKey formats t as the day bucket used by the usage table.
func UsageDayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UsageRepository persists daily aggregate counters.
type UsageRepository interface {
	// Increment adds the given deltas to today's row, creating it on
	// first write.
	Increment(ctx context.Context, day string, counters map[string]int) error
	// Summary returns up to limit most recent days, newest first.
	Summary(ctx context.Context, limit int) ([]UsageDay, error)
}
