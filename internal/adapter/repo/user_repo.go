package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"viralgen/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// Create inserts a fresh account. A duplicate email maps to ErrEmailTaken.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (id, email, password_hash, banned)
VALUES ($1, lower($2), $3, false)
RETURNING id, email, password_hash, banned, created_at, updated_at;
`, user.ID, user.Email, user.PasswordHash)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, password_hash, banned, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, password_hash, banned, created_at, updated_at FROM users WHERE email = lower($1)`, strings.TrimSpace(email))
	return scanUser(row)
}

// List returns every account joined with its role rows and credit
// balance, resolved to the admin-console projection. Users without a
// credit row are shown at full allowance, matching the lazy-create
// behavior of the credit store.
func (r *UserRepositoryPG) List(ctx context.Context) ([]domain.UserOverview, error) {
	rows, err := r.pool.Query(ctx, `
SELECT u.id, u.email, u.banned, u.created_at, u.updated_at,
       COALESCE(array_agg(ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}') AS roles,
       COALESCE(uc.remaining, $1) AS remaining,
       COALESCE(uc.max_credits, $1) AS max_credits
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN user_credits uc ON uc.user_id = u.id
GROUP BY u.id, uc.remaining, uc.max_credits
ORDER BY u.created_at;
`, domain.DefaultMaxCredits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserOverview
	for rows.Next() {
		var (
			o     domain.UserOverview
			roles []string
		)
		if err := rows.Scan(&o.ID, &o.Email, &o.Banned, &o.CreatedAt, &o.UpdatedAt, &roles, &o.Remaining, &o.Max); err != nil {
			return nil, err
		}
		tags := make([]domain.RoleTag, 0, len(roles))
		for _, role := range roles {
			tags = append(tags, domain.RoleTag(role))
		}
		o.Tier = domain.ResolveTier(tags)
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetBanned flips the ban flag on an account.
func (r *UserRepositoryPG) SetBanned(ctx context.Context, id string, banned bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET banned = $2, updated_at = NOW() WHERE id = $1`, id, banned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the account row. Role and credit rows are removed by
// their own stores; there is deliberately no cross-table transaction.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Banned, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
