package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"viralgen/internal/domain"
)

type adminUserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Tier      string `json:"tier"`
	Banned    bool   `json:"banned"`
	Remaining int    `json:"remaining_credits"`
	Max       int    `json:"max_credits"`
	CreatedAt string `json:"created_at"`
}

type adminStatsDTO struct {
	TotalUsers     int     `json:"total_users"`
	ProUsers       int     `json:"pro_users"`
	BannedUsers    int     `json:"banned_users"`
	ConversionRate float64 `json:"conversion_rate"`
}

// AdminListUsers returns every account with its effective tier and usage,
// plus aggregate stats for the console header.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	overviews, err := a.Users.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list users failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "user store unavailable", Retryable: true})
		return
	}

	users := make([]adminUserDTO, 0, len(overviews))
	stats := adminStatsDTO{TotalUsers: len(overviews)}
	for _, o := range overviews {
		users = append(users, adminUserDTO{
			ID:        o.ID,
			Email:     o.Email,
			Tier:      string(o.Tier),
			Banned:    o.Banned,
			Remaining: o.Remaining,
			Max:       o.Max,
			CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
		if o.Tier == domain.TierPro {
			stats.ProUsers++
		}
		if o.Banned {
			stats.BannedUsers++
		}
	}
	if stats.TotalUsers > 0 {
		stats.ConversionRate = float64(stats.ProUsers) / float64(stats.TotalUsers) * 100
	}
	a.json(w, http.StatusOK, map[string]any{"users": users, "stats": stats})
}

type usageDayDTO struct {
	Day           string `json:"day"`
	Submissions   int    `json:"submissions"`
	RelayFailures int    `json:"relay_failures"`
	DeniedCredits int    `json:"denied_credits"`
	DeniedPremium int    `json:"denied_premium"`
	Signups       int    `json:"signups"`
}

// AdminUsage returns the recent daily counters, newest first.
func (a *App) AdminUsage(w http.ResponseWriter, r *http.Request) {
	if a.Usage == nil {
		a.json(w, http.StatusOK, map[string]any{"days": []usageDayDTO{}})
		return
	}
	limit := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 365 {
			limit = n
		}
	}
	summary, err := a.Usage.Summary(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("usage summary failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "usage store unavailable", Retryable: true})
		return
	}
	days := make([]usageDayDTO, 0, len(summary))
	for _, d := range summary {
		days = append(days, usageDayDTO{
			Day:           d.Day,
			Submissions:   d.Submissions,
			RelayFailures: d.RelayFailures,
			DeniedCredits: d.DeniedCredits,
			DeniedPremium: d.DeniedPremium,
			Signups:       d.Signups,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"days": days})
}

type roleRequest struct {
	Role   string `json:"role"`
	Revoke bool   `json:"revoke,omitempty"`
}

// AdminSetRole grants or revokes a single role tag. Grants take effect on
// the target's next request; no session re-issue is needed.
func (a *App) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid payload"})
		return
	}
	tag := domain.RoleTag(req.Role)
	if !domain.KnownRoleTag(tag) {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "unknown role tag"})
		return
	}
	if _, err := a.Users.GetByID(r.Context(), userID); err != nil {
		a.userError(w, err)
		return
	}

	var err error
	if req.Revoke {
		err = a.Roles.Revoke(r.Context(), userID, tag)
	} else {
		err = a.Roles.Grant(r.Context(), userID, tag)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Str("role", req.Role).Msg("role update failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "role store unavailable", Retryable: true})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminResetUsage restores a user's credit balance to its maximum.
func (a *App) AdminResetUsage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := a.Users.GetByID(r.Context(), userID); err != nil {
		a.userError(w, err)
		return
	}
	if err := a.Credits.Reset(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("reset usage failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "credit store unavailable", Retryable: true})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// AdminSetBanned flips the ban flag. The flag is consulted before tier
// resolution, so a ban takes effect on the target's next gated action.
func (a *App) AdminSetBanned(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	var req banRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid payload"})
		return
	}
	if err := a.Users.SetBanned(r.Context(), userID, req.Banned); err != nil {
		a.userError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminDeleteUser removes the account and its role and credit rows. The
// three deletes run independently; a partial failure leaves orphan rows
// that the next delete attempt clears.
func (a *App) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := a.Roles.RemoveAll(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("delete roles failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "role store unavailable", Retryable: true})
		return
	}
	if err := a.Credits.Remove(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("delete credits failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "credit store unavailable", Retryable: true})
		return
	}
	if err := a.Users.Delete(r.Context(), userID); err != nil {
		a.userError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) userError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, errorBody{Code: "not_found", Message: "user not found"})
		return
	}
	a.Logger.Error().Err(err).Msg("user store operation failed")
	a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "user store unavailable", Retryable: true})
}
