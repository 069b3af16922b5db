package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"viralgen/internal/domain"
	"viralgen/internal/policy"
	"viralgen/internal/timer"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Voice  string `json:"voice"`
	Style  string `json:"style"`
}

type generateResponse struct {
	Status    string `json:"status"`
	Unlimited bool   `json:"unlimited"`
	Remaining int    `json:"remaining_credits"`
	Deadline  string `json:"deadline"`
	Duration  int    `json:"duration_seconds"`
}

// Generate is the gated action: validate, gate premium selections on
// tier, consume a credit, then fire the relay. The relay call happens
// strictly after an Allowed decision, and its failure does not roll the
// decrement back.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing user context"})
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid payload"})
		return
	}
	if err := domain.ValidatePrompt(req.Prompt); err != nil {
		a.error(w, http.StatusBadRequest, errorBody{Code: "validation", Message: "please describe what you want to generate"})
		return
	}
	if req.Voice == "" {
		req.Voice = "deep"
	}
	if req.Style == "" {
		req.Style = "brainrot"
	}
	voice, ok := domain.VoiceByID(req.Voice)
	if !ok {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: fmt.Sprintf("unknown voice %q", req.Voice)})
		return
	}
	style, ok := domain.StyleByID(req.Style)
	if !ok {
		a.error(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: fmt.Sprintf("unknown style %q", req.Style)})
		return
	}

	user, tier, err := a.Policy.Evaluate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrBanned) {
			a.error(w, http.StatusForbidden, errorBody{Code: "banned", Message: "this account has been suspended"})
			return
		}
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "account store unavailable", Retryable: true})
		return
	}

	// Premium selections are role-gated only; rejecting here never
	// consumes credit.
	if !policy.GateFeature(tier, voice.Premium) || !policy.GateFeature(tier, style.Premium) {
		a.countUsage(r.Context(), domain.CounterDeniedPremium)
		a.error(w, http.StatusForbidden, errorBody{
			Code:    "premium_required",
			Message: "this premium feature is only available for Pro Studio members",
			Upgrade: true,
		})
		return
	}

	decision, err := a.Policy.CheckAndConsume(r.Context(), userID, tier)
	if err != nil {
		// The gated side effect must not run without a definitive
		// Allowed result.
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("credit check failed")
		a.error(w, http.StatusServiceUnavailable, errorBody{Code: "storage_unavailable", Message: "credit store unavailable", Retryable: true})
		return
	}
	if !decision.Allowed {
		a.countUsage(r.Context(), domain.CounterDeniedCredits)
		a.error(w, http.StatusPaymentRequired, errorBody{
			Code:    "credits_exhausted",
			Message: "you've used all your free credits, upgrade to Pro for unlimited access",
			Upgrade: true,
		})
		return
	}

	submission := domain.GenerationRequest{
		Email:     user.Email,
		Prompt:    req.Prompt,
		Voice:     voice.ID,
		Style:     style.ID,
		Tier:      tier,
		Timestamp: time.Now(),
	}
	if err := a.Relay.Submit(r.Context(), submission); err != nil {
		// The credit is already spent; report the failure as retryable
		// rather than attempting a distributed rollback.
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("relay submission failed after credit decrement")
		a.countUsage(r.Context(), domain.CounterRelayFailures)
		a.error(w, http.StatusBadGateway, errorBody{Code: "relay_failed", Message: "failed to submit request, please try again", Retryable: true})
		return
	}
	a.countUsage(r.Context(), domain.CounterSubmissions)

	deadline := a.Timers.Start(userID)
	a.json(w, http.StatusAccepted, generateResponse{
		Status:    "submitted",
		Unlimited: decision.Unlimited,
		Remaining: decision.Remaining,
		Deadline:  deadline.UTC().Format(time.RFC3339),
		Duration:  int(timer.Duration.Seconds()),
	})
}

type progressResponse struct {
	Active    bool   `json:"active"`
	Remaining int    `json:"remaining_seconds"`
	Deadline  string `json:"deadline,omitempty"`
	Completed bool   `json:"completed"`
}

// Progress reports the countdown state so a page reload resumes the
// progress bar instead of resetting it.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing user context"})
		return
	}
	a.json(w, http.StatusOK, progressDTO(a.Timers.Progress(userID)))
}

// ProgressStream pushes one countdown update per second as server-sent
// events. Closing the connection cancels the tick loop.
func (a *App) ProgressStream(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing user context"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "streaming unsupported"})
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for p := range a.Timers.Watch(r.Context(), userID) {
		payload, err := json.Marshal(progressDTO(p))
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

func progressDTO(p timer.Progress) progressResponse {
	out := progressResponse{
		Active:    p.Active,
		Remaining: int(p.Remaining.Round(time.Second).Seconds()),
		Completed: p.Completed,
	}
	if p.Active {
		out.Deadline = p.Deadline.UTC().Format(time.RFC3339)
	}
	return out
}

type optionDTO struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Premium bool   `json:"premium"`
	Locked  bool   `json:"locked"`
}

// Options lists the voice and style catalogs with per-caller lock state
// so the selector can route locked picks to the upgrade prompt.
func (a *App) Options(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "missing user context"})
		return
	}
	tier := a.Policy.ResolveTier(r.Context(), userID)

	voices := make([]optionDTO, 0, len(domain.Voices()))
	for _, v := range domain.Voices() {
		voices = append(voices, optionDTO{ID: v.ID, Label: v.Label, Premium: v.Premium, Locked: !policy.GateFeature(tier, v.Premium)})
	}
	styles := make([]optionDTO, 0, len(domain.Styles()))
	for _, s := range domain.Styles() {
		styles = append(styles, optionDTO{ID: s.ID, Label: s.Label, Premium: s.Premium, Locked: !policy.GateFeature(tier, s.Premium)})
	}
	a.json(w, http.StatusOK, map[string]any{"voices": voices, "styles": styles})
}
