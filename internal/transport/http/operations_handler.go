package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "aqdaily/internal/errors"
	"aqdaily/internal/operations"
	"aqdaily/internal/services"
)

// OperationsHandler starts pipeline runs and reports their status.
type OperationsHandler struct {
	service  OperationServiceInterface
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(service OperationServiceInterface, logger *slog.Logger) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		service:  service,
		validate: validator.New(),
		now:      time.Now,
		logger:   logger.With(slog.String("handler", "operations")),
	}
}

// OperationRequest is the body of POST /api/operations. An empty date means
// yesterday; no steps means every step.
type OperationRequest struct {
	Date  string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Steps []string `json:"steps,omitempty" validate:"dive,oneof=scrape report process"`
}

// Bind implements render.Binder
func (req *OperationRequest) Bind(r *http.Request) error {
	return nil
}

// Routes returns the operation routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.StartOperation)
	r.Get("/status", h.GetStatus)
	return r
}

// StartOperation handles POST /api/operations
func (h *OperationsHandler) StartOperation(w http.ResponseWriter, r *http.Request) {
	var req OperationRequest
	if r.ContentLength != 0 {
		if err := render.Bind(r, &req); err != nil {
			render.Render(w, r, apperrors.NewErrorResponse(
				apperrors.New(http.StatusBadRequest, "INVALID_BODY", err.Error())))
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apperrors.NewErrorResponse(
			apperrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "invalid operation request", err.Error())))
		return
	}

	window := operations.YesterdayWindow(h.now().UTC())
	if req.Date != "" {
		var err error
		if window, err = operations.ParseDayWindow(req.Date); err != nil {
			render.Render(w, r, apperrors.NewErrorResponse(apperrors.InvalidParameter("date", req.Date)))
			return
		}
	}

	id, err := h.service.StartOperation(r.Context(), operations.OperationRequest{Steps: req.Steps, Window: window})
	if errors.Is(err, services.ErrOperationRunning) {
		render.Render(w, r, apperrors.NewErrorResponse(
			apperrors.New(http.StatusConflict, "OPERATION_RUNNING", err.Error())))
		return
	}
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"id":  id,
		"day": window.Day(),
	})
}

// GetStatus handles GET /api/operations/status
func (h *OperationsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}
