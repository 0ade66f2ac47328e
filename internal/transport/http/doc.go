// Package http implements the aqdaily HTTP API on chi.
//
// Handlers stay thin: they parse and validate the request, call a service
// and render the result with go-chi/render. Errors are mapped through
// errors.FromError so NOT_FOUND becomes 404 and validation failures 422.
//
//	GET  /api/health
//	GET  /api/version
//	GET  /api/reports
//	GET  /api/reports/{day}
//	GET  /api/reports/{day}/html
//	POST /api/operations
//	GET  /api/operations/status
//	GET  /metrics
package http
