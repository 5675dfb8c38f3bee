package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/otp"
	"github.com/go-auth-api/internal/application/user"
	"github.com/go-auth-api/internal/application/verification"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/infrastructure/token"
	"github.com/go-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo UserRepository
	KV       KeyValueStore
	Notifier Notifier
	Codec    *token.Codec
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	backend := auth.NewBackend(deps.Codec, deps.UserRepo, cfg.AccessTokenLifetime, cfg.RefreshTokenLifetime)
	codeStore := otp.NewStore(deps.KV)
	flow := verification.NewFlow(codeStore, deps.Notifier, deps.UserRepo, cfg.OTPLifetime)
	userSvc := user.NewService(deps.UserRepo, flow)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(userSvc, backend, flow, cfg.AppEnv == "production")

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/verify", authH.Verify)
			r.Get("/refresh", authH.Refresh)

			// ── Authenticated routes ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(backend))
				r.Get("/me", authH.Me)
			})
		})
	})

	return r
}
