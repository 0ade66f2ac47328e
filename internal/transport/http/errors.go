package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "aqdaily/internal/errors"
	"aqdaily/internal/middleware"
)

// renderError maps err onto an API error response and logs server faults.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	render.Render(w, r, apperrors.NewErrorResponse(apiErr))
}
