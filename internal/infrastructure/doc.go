// Package infrastructure carries the process-wide plumbing shared by every
// aqdaily command: the JSON slog logger with trace correlation, the
// OpenTelemetry tracer provider and the Prometheus registry.
package infrastructure
