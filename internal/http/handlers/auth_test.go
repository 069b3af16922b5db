package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"viralgen/internal/domain"
	"viralgen/internal/middleware"
)

func postJSON(handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignup(t *testing.T) {
	env := newTestEnv()

	rec := postJSON(env.app.Signup, "/v1/auth/signup", `{"email":"New@Example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty session token")
	}
	if resp.User.Email != "new@example.com" {
		t.Fatalf("email = %q, want lowercased", resp.User.Email)
	}
	if resp.User.Tier != string(domain.TierFree) || resp.User.Unlimited {
		t.Fatalf("new account tier = %+v, want free", resp.User)
	}
	if resp.User.Remaining != domain.DefaultMaxCredits || resp.User.Max != domain.DefaultMaxCredits {
		t.Fatalf("new account allowance = %d/%d, want full", resp.User.Remaining, resp.User.Max)
	}

	claims, err := middleware.VerifySession(env.app.Cfg.JWTSecret, resp.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != resp.User.ID {
		t.Fatalf("token subject = %q, want %q", claims.Subject, resp.User.ID)
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","password":"hunter22"}`},
		{"short password", `{"email":"a@example.com","password":"abc"}`},
		{"bad json", `{"email":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(env.app.Signup, "/v1/auth/signup", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("code = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	env.addUser("u1", "taken@example.com")

	rec := postJSON(env.app.Signup, "/v1/auth/signup", `{"email":"taken@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("code = %d, want 409 (%s)", rec.Code, rec.Body.String())
	}
	if body := decodeError(t, rec); body.Code != "email_taken" {
		t.Fatalf("body = %+v", body)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := env.addUser("u1", "user@example.com", domain.RolePro)
	u.PasswordHash = string(hash)

	rec := postJSON(env.app.Login, "/v1/auth/login", `{"email":"User@Example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if resp.User.Tier != string(domain.TierPro) || !resp.User.Unlimited {
		t.Fatalf("pro login profile = %+v", resp.User)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(env.app.Login, "/v1/auth/login", `{"email":"user@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
		if body := decodeError(t, rec); body.Code != "invalid_credentials" {
			t.Fatalf("body = %+v", body)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := postJSON(env.app.Login, "/v1/auth/login", `{"email":"ghost@example.com","password":"hunter22"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rec.Code)
		}
	})

	t.Run("banned account", func(t *testing.T) {
		u.Banned = true
		defer func() { u.Banned = false }()
		rec := postJSON(env.app.Login, "/v1/auth/login", `{"email":"user@example.com","password":"hunter22"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403", rec.Code)
		}
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv()
	env.addUser("u1", "free@example.com")
	env.credits.balances["u1"] = 1

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	env.app.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d (%s)", rec.Code, rec.Body.String())
	}
	var profile profileDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Remaining != 1 || profile.Max != domain.DefaultMaxCredits {
		t.Fatalf("profile allowance = %d/%d, want 1/%d", profile.Remaining, profile.Max, domain.DefaultMaxCredits)
	}
}

func TestMeUnlimitedSkipsCreditStore(t *testing.T) {
	env := newTestEnv()
	env.addUser("u1", "admin@example.com", domain.RoleAdmin)
	env.credits.err = errStore

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	env.app.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 even with the credit store down (%s)", rec.Code, rec.Body.String())
	}
	var profile profileDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if !profile.Unlimited || profile.Tier != string(domain.TierAdmin) {
		t.Fatalf("profile = %+v", profile)
	}
}
