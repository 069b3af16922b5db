package middleware

import (
	"context"
	"net/http"

	"viralgen/internal/domain"
)

// TierResolver resolves the effective tier of a user. Resolution happens
// per request so operator role changes take effect on the next call
// without re-issuing session tokens.
type TierResolver func(ctx context.Context, userID string) domain.Tier

// RequireAdmin rejects any request whose authenticated user does not
// resolve to the admin tier. It must run after AuthJWT.
func RequireAdmin(resolve TierResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			if resolve(r.Context(), userID) != domain.TierAdmin {
				http.Error(w, "admins only", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
