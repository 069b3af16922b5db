package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"viralgen/internal/domain"
	"viralgen/internal/middleware"
	"viralgen/internal/policy"
)

const minPasswordLen = 6

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  profileDTO `json:"user"`
}

type profileDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Tier      string `json:"tier"`
	Unlimited bool   `json:"unlimited"`
	Remaining int    `json:"remaining_credits"`
	Max       int    `json:"max_credits"`
}

func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid payload"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "validation", Message: "please enter a valid email address"})
		return
	}
	if len(req.Password) < minPasswordLen {
		a.error(w, http.StatusBadRequest, errorBody{Code: "validation", Message: "password must be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "failed to create account"})
		return
	}

	user, err := a.Users.Create(r.Context(), &domain.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, errorBody{Code: "email_taken", Message: "this email is already registered, please log in instead"})
			return
		}
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "failed to create account"})
		return
	}
	a.countUsage(r.Context(), domain.CounterSignups)

	a.respondSession(w, r, user)
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid payload"})
		return
	}
	user, err := a.Users.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, errorBody{Code: "invalid_credentials", Message: "invalid email or password"})
			return
		}
		a.Logger.Error().Err(err).Msg("load user failed")
		a.error(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "failed to sign in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "invalid_credentials", Message: "invalid email or password"})
		return
	}
	if user.Banned {
		a.error(w, http.StatusForbidden, errorBody{Code: "banned", Message: "this account has been suspended"})
		return
	}

	a.respondSession(w, r, user)
}

func (a *App) respondSession(w http.ResponseWriter, r *http.Request, user *domain.User) {
	token, err := middleware.SignSession(a.Cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session failed")
		a.error(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "failed to sign token"})
		return
	}
	profile, err := a.profileFor(r, user)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "credit store unavailable", Retryable: true})
		return
	}
	a.json(w, http.StatusOK, sessionResponse{Token: token, User: profile})
}

// Me returns the dashboard display state: tier badge plus remaining
// allowance.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing user context"})
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, errorBody{Code: "not_found", Message: "user not found"})
		return
	}
	profile, err := a.profileFor(r, user)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "credit store unavailable", Retryable: true})
		return
	}
	a.json(w, http.StatusOK, profile)
}

// profileFor resolves the display state. Unlimited tiers report a full
// bar without consulting the credit store.
func (a *App) profileFor(r *http.Request, user *domain.User) (profileDTO, error) {
	tier := a.Policy.ResolveTier(r.Context(), user.ID)
	dto := profileDTO{
		ID:        user.ID,
		Email:     user.Email,
		Tier:      string(tier),
		Unlimited: policy.HasUnlimitedAccess(tier),
	}
	if dto.Unlimited {
		return dto, nil
	}
	bal, err := a.Policy.Balance(r.Context(), user.ID)
	if err != nil {
		return profileDTO{}, err
	}
	dto.Remaining = bal.Remaining
	dto.Max = bal.Max
	return dto, nil
}
