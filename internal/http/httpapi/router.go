package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"viralgen/internal/http/handlers"
	"viralgen/internal/middleware"
)

// NewRouter assembles the API routes and middleware chain. The country
// lookup may be nil when no GeoIP database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(app.Cfg.AllowedOrigins))
	r.Use(middleware.Locale(app.Cfg.DefaultLocale, lookup))
	r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/activity", app.Activity)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", app.Signup)
		r.Post("/login", app.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret))

		r.Get("/v1/me", app.Me)
		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/generate/options", app.Options)
		r.Get("/v1/generate/progress", app.Progress)
		r.Get("/v1/generate/progress/stream", app.ProgressStream)

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(app.Policy.ResolveTier))

			r.Get("/users", app.AdminListUsers)
			r.Get("/usage", app.AdminUsage)
			r.Post("/users/{id}/role", app.AdminSetRole)
			r.Post("/users/{id}/reset-usage", app.AdminResetUsage)
			r.Post("/users/{id}/ban", app.AdminSetBanned)
			r.Delete("/users/{id}", app.AdminDeleteUser)
		})
	})

	return r
}
