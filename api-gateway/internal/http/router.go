package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/http/handlers"
	"github.com/pribylovaa/go-food-delivery/api-gateway/internal/http/middleware"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Metrics  prometheus.Registerer // nil - без HTTP-метрик.
	BasePath string                // например, "/api"; пустой - роуты на корне.
}

// NewRouter собирает chi-роутер с мидлварами и маршрутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Внешний -> внутренний. Recover внутри Logging: паника пишется
	// логгером запроса и попадает в итоговую запись со статусом 500.
	root.Use(
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Recover(),
		middleware.Timeout(opts.Timeout),
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
	}

	if opts.BasePath == "" {
		registerRoutes(root, h)
		return root
	}

	root.Route(opts.BasePath, func(r chi.Router) { registerRoutes(r, h) })

	return root
}

func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/tokens", h.GenerateTokens)
	r.Post("/auth/refresh", h.RefreshTokens)
	r.Post("/auth/revoke", h.RevokeToken)
	r.Post("/auth/restore", h.RestoreToken)
	r.Get("/auth/validate", h.ValidateToken)

	// otp
	r.Post("/otp/send", h.SendOTP)
	r.Post("/otp/verify", h.VerifyOTP)

	// ratings
	r.Post("/ratings", h.UpdateRating)
}
