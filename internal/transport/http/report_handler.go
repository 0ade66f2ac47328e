package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "aqdaily/internal/errors"
)

type dayKey struct{}

// ReportHandler serves the persisted availability reports.
type ReportHandler struct {
	service ReportServiceInterface
	logger  *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListDays)
	r.Route("/{day}", func(r chi.Router) {
		r.Use(h.DayCtx)
		r.Get("/", h.GetReport)
		r.Get("/html", h.GetReportHTML)
	})
	return r
}

// DayCtx validates the {day} parameter.
func (h *ReportHandler) DayCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		day := chi.URLParam(r, "day")
		if _, err := time.Parse(time.DateOnly, day); err != nil {
			render.Render(w, r, apperrors.NewErrorResponse(apperrors.InvalidParameter("day", day)))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), dayKey{}, day)))
	})
}

// ListDays handles GET /api/reports
func (h *ReportHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.Days(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"days":  days,
		"count": len(days),
	})
}

// GetReport handles GET /api/reports/{day}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	day := r.Context().Value(dayKey{}).(string)
	report, err := h.service.Report(r.Context(), day)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, report)
}

// GetReportHTML handles GET /api/reports/{day}/html
func (h *ReportHandler) GetReportHTML(w http.ResponseWriter, r *http.Request) {
	day := r.Context().Value(dayKey{}).(string)
	html, err := h.service.ReportHTML(r.Context(), day)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}
