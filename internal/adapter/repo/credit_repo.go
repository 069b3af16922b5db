package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viralgen/internal/domain"
)

// CreditRepositoryPG implements domain.CreditRepository backed by
// PostgreSQL. Balances are lazily created at full allowance, and the
// decrement is a single conditional update so two concurrent submissions
// can never spend the same credit.
type CreditRepositoryPG struct {
	pool *pgxpool.Pool
	max  int
}

// NewCreditRepository creates a new CreditRepositoryPG with the given
// maximum allowance for fresh balances.
func NewCreditRepository(pool *pgxpool.Pool, max int) *CreditRepositoryPG {
	if max <= 0 {
		max = domain.DefaultMaxCredits
	}
	return &CreditRepositoryPG{pool: pool, max: max}
}

// Get returns the user's balance, inserting a full allowance on first
// observation.
func (r *CreditRepositoryPG) Get(ctx context.Context, userID string) (domain.CreditBalance, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO user_credits (user_id, remaining, max_credits)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING user_id, remaining, max_credits;
`, userID, r.max)

	var bal domain.CreditBalance
	if err := row.Scan(&bal.UserID, &bal.Remaining, &bal.Max); err != nil {
		return domain.CreditBalance{}, err
	}
	return bal, nil
}

// ConsumeOne decrements the balance when positive, in one statement. The
// bool result is false when the balance was already exhausted; no row is
// mutated in that case. A missing row is seeded first so brand-new users
// spend out of a full allowance.
func (r *CreditRepositoryPG) ConsumeOne(ctx context.Context, userID string) (int, bool, error) {
	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_credits (user_id, remaining, max_credits)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO NOTHING;
`, userID, r.max); err != nil {
		return 0, false, err
	}

	row := r.pool.QueryRow(ctx, `
UPDATE user_credits
SET remaining = remaining - 1, updated_at = NOW()
WHERE user_id = $1 AND remaining > 0
RETURNING remaining;
`, userID)

	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return remaining, true, nil
}

// Reset restores the balance to its maximum allowance.
func (r *CreditRepositoryPG) Reset(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO user_credits (user_id, remaining, max_credits)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET remaining = user_credits.max_credits, updated_at = NOW();
`, userID, r.max)
	return err
}

// Remove deletes the balance row, used when an account is deleted. Role
// and user rows are removed independently; the design accepts eventual
// consistency between the tables.
func (r *CreditRepositoryPG) Remove(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_credits WHERE user_id = $1`, userID)
	return err
}
