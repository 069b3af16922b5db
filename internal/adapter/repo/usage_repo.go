package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viralgen/internal/domain"
)

// UsageRepositoryPG implements domain.UsageRepository backed by
// PostgreSQL. One row per UTC day; writes are additive upserts so
// concurrent requests never lose counts.
type UsageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUsageRepository constructs the repository.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepositoryPG {
	return &UsageRepositoryPG{pool: pool}
}

// Increment adds the given deltas to the day's row, creating it on first
// write. Unknown counter names contribute zero.
func (r *UsageRepositoryPG) Increment(ctx context.Context, day string, counters map[string]int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO usage_daily (
    day, submissions, relay_failures, denied_credits, denied_premium, signups
) VALUES (
    $1, $2, $3, $4, $5, $6
) ON CONFLICT (day) DO UPDATE SET
    submissions = usage_daily.submissions + EXCLUDED.submissions,
    relay_failures = usage_daily.relay_failures + EXCLUDED.relay_failures,
    denied_credits = usage_daily.denied_credits + EXCLUDED.denied_credits,
    denied_premium = usage_daily.denied_premium + EXCLUDED.denied_premium,
    signups = usage_daily.signups + EXCLUDED.signups,
    updated_at = NOW();
`,
		day,
		counters[domain.CounterSubmissions],
		counters[domain.CounterRelayFailures],
		counters[domain.CounterDeniedCredits],
		counters[domain.CounterDeniedPremium],
		counters[domain.CounterSignups],
	)
	return err
}

// Summary returns up to limit most recent days, newest first.
func (r *UsageRepositoryPG) Summary(ctx context.Context, limit int) ([]domain.UsageDay, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx, `
SELECT day, submissions, relay_failures, denied_credits, denied_premium, signups, created_at, updated_at
FROM usage_daily
ORDER BY day DESC
LIMIT $1;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UsageDay
	for rows.Next() {
		var d domain.UsageDay
		if err := rows.Scan(
			&d.Day,
			&d.Submissions,
			&d.RelayFailures,
			&d.DeniedCredits,
			&d.DeniedPremium,
			&d.Signups,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
