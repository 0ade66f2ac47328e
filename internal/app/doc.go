// Package app wires configuration, logging, tracing, metrics, storage, the
// operation manager and the HTTP router into one Application. The CLI
// builds an Application per command.
package app
