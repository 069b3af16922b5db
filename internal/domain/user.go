package domain

import "time"

// RoleTag is a single role row attached to a user. A user may carry any
// number of tags; the effective tier is the precedence reduction in
// ResolveTier.
type RoleTag string

const (
	RoleAdmin RoleTag = "admin"
	RolePro   RoleTag = "pro"
	RoleUser  RoleTag = "user"
)

// KnownRoleTag reports whether the tag belongs to the closed role set.
func KnownRoleTag(tag RoleTag) bool {
	switch tag {
	case RoleAdmin, RolePro, RoleUser:
		return true
	}
	return false
}

// Tier is the resolved privilege level of a user.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierAdmin Tier = "admin"
)

// ResolveTier collapses a set of role tags into one effective tier.
// Precedence is admin > pro > free; the plain "user" tag confers nothing
// beyond free, and an empty set means free.
func ResolveTier(tags []RoleTag) Tier {
	tier := TierFree
	for _, tag := range tags {
		switch tag {
		case RoleAdmin:
			return TierAdmin
		case RolePro:
			tier = TierPro
		}
	}
	return tier
}

// Unlimited reports whether the tier bypasses credit accounting. Admins
// carry full pro capability regardless of other rows.
func (t Tier) Unlimited() bool {
	return t == TierPro || t == TierAdmin
}

// User represents an account created through signup.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOverview is the admin-console projection of a user: the base record
// joined with its effective tier and usage counters.
type UserOverview struct {
	User
	Tier      Tier
	Remaining int
	Max       int
}
