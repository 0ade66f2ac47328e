// Package middleware holds the chi middleware of the aqdaily HTTP server:
// request IDs, tracing, request logging, panic recovery and request metrics.
package middleware
