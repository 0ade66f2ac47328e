package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aqdaily/internal/infrastructure"
	"aqdaily/internal/middleware"
)

// RouterConfig collects the handlers mounted by NewRouter.
type RouterConfig struct {
	Health     *HealthHandler
	Reports    *ReportHandler
	Operations *OperationsHandler
	Metrics    *infrastructure.Metrics
	Logger     *slog.Logger
}

// NewRouter builds the aqdaily HTTP API. Operations routes are mounted only
// when an operations handler is given.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.RequestMetrics(cfg.Metrics))
	r.Use(middleware.SecurityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.Health.HealthCheck)
		r.Get("/version", cfg.Health.Version)
		r.Mount("/reports", cfg.Reports.Routes())
		if cfg.Operations != nil {
			r.Mount("/operations", cfg.Operations.Routes())
		}
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	return r
}
