package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viralgen/internal/domain"
)

func TestSignAndVerifySession(t *testing.T) {
	token, err := SignSession("test-secret", "user-123", "a@example.com")
	if err != nil {
		t.Fatalf("SignSession() error: %v", err)
	}
	claims, err := VerifySession("test-secret", token)
	if err != nil {
		t.Fatalf("VerifySession() error: %v", err)
	}
	if claims.Subject != "user-123" || claims.Email != "a@example.com" {
		t.Fatalf("VerifySession() claims = %+v, want user-123/a@example.com", claims)
	}
}

func TestVerifySessionWrongSecret(t *testing.T) {
	token, err := SignSession("secret-a", "user-123", "a@example.com")
	if err != nil {
		t.Fatalf("SignSession() error: %v", err)
	}
	if _, err := VerifySession("secret-b", token); err == nil {
		t.Fatalf("VerifySession() accepted a forged signature")
	}
}

func TestAuthJWT(t *testing.T) {
	secret := "test-secret"
	var gotUserID string
	handler := AuthJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	}))

	token, err := SignSession(secret, "user-123", "a@example.com")
	if err != nil {
		t.Fatalf("SignSession() error: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && gotUserID != "user-123" {
				t.Fatalf("context user = %q, want user-123", gotUserID)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	resolve := func(_ context.Context, userID string) domain.Tier {
		if userID == "admin-1" {
			return domain.TierAdmin
		}
		return domain.TierFree
	}
	handler := RequireAdmin(resolve)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{name: "admin allowed", userID: "admin-1", wantStatus: http.StatusOK},
		{name: "free forbidden", userID: "user-1", wantStatus: http.StatusForbidden},
		{name: "anonymous unauthorized", userID: "", wantStatus: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
			req = req.WithContext(ContextWithUserID(req.Context(), tc.userID))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		country string
		want    string
	}{
		{name: "x-locale wins", headers: map[string]string{"X-Locale": "es", "Accept-Language": "en-US"}, want: "es"},
		{name: "accept-language", headers: map[string]string{"Accept-Language": "id-ID,id;q=0.9"}, want: "id"},
		{name: "country fallback", country: "ID", want: "id"},
		{name: "default", want: "en"},
		{name: "unsupported maps to fallback", headers: map[string]string{"Accept-Language": "xx-badtag"}, want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := detectLocale(req, "en", tc.country); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{name: "forwarded first", forwarded: "203.0.113.1, 198.51.100.2", remoteAddr: "198.51.100.10:1234", want: "203.0.113.1"},
		{name: "invalid forwarded falls back", forwarded: "invalid", remoteAddr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "remote only", remoteAddr: "198.51.100.10:1234", want: "198.51.100.10"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("clientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.10:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}

	// A different IP gets its own window.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.11:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("fresh IP status = %d, want 200", rec.Code)
	}
}
