package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"guardian/internal/app"
	"guardian/internal/platform/metrics"
	"guardian/internal/platform/middleware"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler is the loopback shell over the app screens. It holds no session
// state of its own.
type Handler struct {
	app     *app.App
	logger  *slog.Logger
	metrics *metrics.Metrics
	health  HealthCheck
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithHealthCheck adds a dependency probe to /healthz.
func WithHealthCheck(check HealthCheck) Option {
	return func(h *Handler) {
		h.health = check
	}
}

func NewHandler(a *app.App, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{app: a, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the shell endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Logger(h.logger))
		r.Use(chimw.Timeout(60 * time.Second))
		r.Use(middleware.ContentTypeJSON)

		r.Get("/session", h.handleSession)
		r.Post("/login/google", h.handleGoogleLogin)
		r.Post("/login/token", h.handleSubmitToken)
		r.Get("/home", h.handleHome)
		r.Post("/logout", h.handleLogout)
	})
	return r
}
