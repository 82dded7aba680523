package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/zma-auto/taxi-landing/internal/http/middleware"
	"github.com/zma-auto/taxi-landing/internal/landing"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Landing            *landing.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// SubmitLimiter throttles form actions per client (optional).
	SubmitLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "text/html", "text/css", "application/javascript", "application/json"))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.SubmitLimiter != nil {
		throttle = httpmiddleware.RateLimit(cfg.SubmitLimiter)
	}

	h := cfg.Landing
	r.Get("/health", h.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Handle("/static/*", h.Static())

	// Server-rendered page and its no-JS form actions.
	r.Get("/", h.Page)
	r.With(throttle).Post("/forms/{formID}/submit", h.SubmitAction)
	r.Post("/forms/{formID}/{action}", h.FormAction)

	r.Route("/api", func(api chi.Router) {
		if len(cfg.CORSAllowedOrigins) > 0 {
			api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
		}
		api.Get("/catalog", h.Catalog)
		api.Get("/countdown", h.Countdown)
		api.Get("/countdown/ws", h.CountdownStream)
		api.Route("/forms/{formID}", func(form chi.Router) {
			form.Get("/", h.GetForm)
			form.Patch("/", h.UpdateForm)
			form.With(throttle).Post("/submit", h.SubmitForm)
			form.Post("/dismiss", h.DismissForm)
		})
	})

	return r
}
