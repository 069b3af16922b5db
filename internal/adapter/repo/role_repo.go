package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"viralgen/internal/domain"
)

// RoleRepositoryPG implements domain.RoleRepository backed by PostgreSQL.
// user_roles holds zero or more tag rows per user; no row means free tier.
type RoleRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepositoryPG.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepositoryPG {
	return &RoleRepositoryPG{pool: pool}
}

// ListRoles returns every role tag recorded for the user.
func (r *RoleRepositoryPG) ListRoles(ctx context.Context, userID string) ([]domain.RoleTag, error) {
	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.RoleTag
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		tags = append(tags, domain.RoleTag(role))
	}
	return tags, rows.Err()
}

// Grant upserts a role row. Last write for a given (user, role) wins;
// repeated grants are no-ops.
func (r *RoleRepositoryPG) Grant(ctx context.Context, userID string, tag domain.RoleTag) error {
	if !domain.KnownRoleTag(tag) {
		return domain.ErrInvalidRole
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO user_roles (user_id, role, granted_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, role) DO UPDATE SET granted_at = NOW();
`, userID, string(tag))
	return err
}

// Revoke removes a role row if present.
func (r *RoleRepositoryPG) Revoke(ctx context.Context, userID string, tag domain.RoleTag) error {
	if !domain.KnownRoleTag(tag) {
		return domain.ErrInvalidRole
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, string(tag))
	return err
}

// RemoveAll drops every role row for the user.
func (r *RoleRepositoryPG) RemoveAll(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	return err
}
