package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"booksummarizer/internal/handlers"
	"booksummarizer/internal/middleware"
)

func New(
	logger zerolog.Logger,
	sessionAuth *middleware.SessionAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	summaryHandler *handlers.SummaryHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	trustProxy bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(hlog.NewHandler(logger))
	// Forwarded headers are client controlled unless a proxy rewrites them.
	if trustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	// Health check
	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			// Logout reads the bearer token itself so repeats stay successful.
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth.Middleware)
				r.Get("/me", authHandler.Me)
			})
		})

		// ──── Summary Routes ────
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Post("/summarize", summaryHandler.Summarize)
			r.Get("/summaries", summaryHandler.List)
			r.Get("/download/{summaryID}", summaryHandler.Download)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Use(middleware.RequireAdmin)
			r.Get("/users", adminHandler.ListUsers)
			r.Get("/summaries", adminHandler.ListSummaries)
			r.Get("/users/{id}/summaries", adminHandler.ListUserSummaries)
		})
	})

	return r
}
