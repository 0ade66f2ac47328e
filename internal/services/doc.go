// Package services holds the application services behind the HTTP
// handlers: persisted availability reports, health, and background
// pipeline runs.
package services
