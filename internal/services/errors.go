package services

import "errors"

// Operation errors
var (
	ErrOperationRunning = errors.New("operation already running")
)
