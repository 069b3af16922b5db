package domain

import "context"

// UserRepository defines access methods for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]UserOverview, error)
	SetBanned(ctx context.Context, id string, banned bool) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository is the source of truth for role tags. Reads return zero
// or more tags; absence of any row implies the free tier.
type RoleRepository interface {
	ListRoles(ctx context.Context, userID string) ([]RoleTag, error)
	Grant(ctx context.Context, userID string, tag RoleTag) error
	Revoke(ctx context.Context, userID string, tag RoleTag) error
	// RemoveAll drops every role row for the user. Used on account
	// deletion; runs independently of the other tables.
	RemoveAll(ctx context.Context, userID string) error
}

// CreditRepository persists per-user remaining-uses counters.
type CreditRepository interface {
	// Get returns the balance, lazily creating it at full allowance when
	// no record exists yet.
	Get(ctx context.Context, userID string) (CreditBalance, error)
	// ConsumeOne atomically decrements remaining when it is positive. The
	// returned bool is false when the balance was already exhausted, in
	// which case nothing was mutated.
	ConsumeOne(ctx context.Context, userID string) (remaining int, consumed bool, err error)
	// Reset restores the balance to its maximum allowance.
	Reset(ctx context.Context, userID string) error
	// Remove drops the balance row. Used on account deletion; runs
	// independently of the other tables.
	Remove(ctx context.Context, userID string) error
}
