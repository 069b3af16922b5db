// Package handlers implements the HTTP surface of the ViralGen API:
// auth, the gated generation endpoint, countdown progress, the cosmetic
// activity feed, and the admin console.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"viralgen/internal/domain"
	"viralgen/internal/infra"
	"viralgen/internal/middleware"
	"viralgen/internal/policy"
	"viralgen/internal/timer"
)

// RelaySubmitter is satisfied by the relay client.
type RelaySubmitter interface {
	Submit(ctx context.Context, req domain.GenerationRequest) error
}

// App is the handler dependency container.
type App struct {
	Logger  zerolog.Logger
	Cfg     *infra.Config
	Users   domain.UserRepository
	Roles   domain.RoleRepository
	Credits domain.CreditRepository
	Usage   domain.UsageRepository
	Policy  *policy.Policy
	Relay   RelaySubmitter
	Timers  *timer.Store
}

// NewApp wires the handler container.
func NewApp(cfg *infra.Config, logger zerolog.Logger, users domain.UserRepository, roles domain.RoleRepository, credits domain.CreditRepository, usage domain.UsageRepository, relay RelaySubmitter) *App {
	return &App{
		Logger:  logger,
		Cfg:     cfg,
		Users:   users,
		Roles:   roles,
		Credits: credits,
		Usage:   usage,
		Policy:  policy.New(users, roles, credits, logger),
		Relay:   relay,
		Timers:  timer.NewStore(),
	}
}

// countUsage bumps a daily counter. Counters are display-only, so a
// failed write is logged and otherwise ignored.
func (a *App) countUsage(ctx context.Context, counter string) {
	if a.Usage == nil {
		return
	}
	day := domain.UsageDayKey(time.Now())
	if err := a.Usage.Increment(ctx, day, map[string]int{counter: 1}); err != nil {
		a.Logger.Warn().Err(err).Str("counter", counter).Msg("usage increment failed")
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Upgrade   bool   `json:"upgrade,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, body errorBody) {
	a.json(w, code, map[string]errorBody{"error": body})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
