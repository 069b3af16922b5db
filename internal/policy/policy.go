// Package policy implements the tiered access and credit gating rules.
// It is the single authority for whether a gated action may proceed; the
// generation countdown and other presentational state carry no weight here.
package policy

import (
	"context"

	"github.com/rs/zerolog"

	"viralgen/internal/domain"
)

// Decision is the outcome of a credit check.
type Decision struct {
	Allowed   bool
	Unlimited bool
	// Remaining is the post-decision balance. Meaningless when Unlimited.
	Remaining int
}

// Policy evaluates role and credit state for gated actions.
type Policy struct {
	users   domain.UserRepository
	roles   domain.RoleRepository
	credits domain.CreditRepository
	logger  zerolog.Logger
}

// New constructs a Policy over the given stores.
func New(users domain.UserRepository, roles domain.RoleRepository, credits domain.CreditRepository, logger zerolog.Logger) *Policy {
	return &Policy{users: users, roles: roles, credits: credits, logger: logger}
}

// ResolveTier reads all role rows for the user and collapses them to one
// effective tier. A read failure or an empty result degrades to free: a
// transient store error never locks a user out, and never grants
// elevated privilege either.
func (p *Policy) ResolveTier(ctx context.Context, userID string) domain.Tier {
	tags, err := p.roles.ListRoles(ctx, userID)
	if err != nil {
		p.logger.Warn().Err(err).Str("user_id", userID).Msg("role read failed, degrading to free tier")
		return domain.TierFree
	}
	return domain.ResolveTier(tags)
}

// HasUnlimitedAccess reports whether the tier bypasses credit accounting.
func HasUnlimitedAccess(tier domain.Tier) bool {
	return tier.Unlimited()
}

// CheckAndConsume decides whether a gated action may proceed for the user
// and, for free-tier users, consumes one credit on success. The decrement
// is a single conditional update at the storage layer, so concurrent
// double-submission cannot double-spend a final credit. Storage failures
// surface as *domain.StorageError and the gated action must not run.
func (p *Policy) CheckAndConsume(ctx context.Context, userID string, tier domain.Tier) (Decision, error) {
	if HasUnlimitedAccess(tier) {
		return Decision{Allowed: true, Unlimited: true}, nil
	}
	remaining, consumed, err := p.credits.ConsumeOne(ctx, userID)
	if err != nil {
		return Decision{}, domain.NewStorageError("consume credit", err)
	}
	if !consumed {
		return Decision{Allowed: false, Remaining: 0}, nil
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}

// Evaluate loads the account and resolves its effective tier. The ban
// flag is consulted before tier resolution: a banned account gets no
// gated action regardless of roles. Callers gate premium features on the
// returned tier before CheckAndConsume so that feature gating never
// spends credit.
func (p *Policy) Evaluate(ctx context.Context, userID string) (*domain.User, domain.Tier, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.TierFree, domain.NewStorageError("load user", err)
	}
	if user.Banned {
		return nil, domain.TierFree, domain.ErrBanned
	}
	return user, p.ResolveTier(ctx, userID), nil
}

// GateFeature reports whether a feature is usable at the given tier.
// Premium features are role-gated only and never consume credit.
func GateFeature(tier domain.Tier, premium bool) bool {
	if !premium {
		return true
	}
	return HasUnlimitedAccess(tier)
}

// Balance reads the current credit balance for display, lazily creating a
// full allowance for first-time users. Failures surface as
// *domain.StorageError.
func (p *Policy) Balance(ctx context.Context, userID string) (domain.CreditBalance, error) {
	bal, err := p.credits.Get(ctx, userID)
	if err != nil {
		return domain.CreditBalance{}, domain.NewStorageError("read credit balance", err)
	}
	return bal, nil
}
