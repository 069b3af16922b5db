package domain

// DefaultMaxCredits is the allowance granted to a fresh free account.
// Balances are lazily created at this value on first read and replenished
// only by an operator reset.
const DefaultMaxCredits = 2

// CreditBalance is the per-user remaining-uses counter. For free users
// 0 <= Remaining <= Max holds at all times; pro and admin users are treated
// as unbounded and never consult the stored value.
type CreditBalance struct {
	UserID    string
	Remaining int
	Max       int
}

// Exhausted reports whether the balance has no uses left.
func (b CreditBalance) Exhausted() bool {
	return b.Remaining <= 0
}
