package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"aqdaily/internal/operations"
)

// OperationStatus is the state of the most recent pipeline run.
type OperationStatus struct {
	Running bool                          `json:"running"`
	Current *operations.OperationRequest  `json:"current,omitempty"`
	Last    *operations.OperationResponse `json:"last,omitempty"`
}

// OperationService runs the pipeline in the background, one run at a time.
type OperationService struct {
	manager *operations.Manager
	logger  *slog.Logger

	mu      sync.Mutex
	current *operations.OperationRequest
	last    *operations.OperationResponse
	done    chan struct{}
}

// NewOperationService wraps a configured manager.
func NewOperationService(manager *operations.Manager, logger *slog.Logger) *OperationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationService{
		manager: manager,
		logger:  logger.With(slog.String("service", "operations")),
	}
}

// StartOperation launches req and returns its ID without waiting. The run
// outlives ctx's cancellation but keeps its values.
func (s *OperationService) StartOperation(ctx context.Context, req operations.OperationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return "", ErrOperationRunning
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	s.current = &req
	s.done = make(chan struct{})

	go s.run(context.WithoutCancel(ctx), req, s.done)

	s.logger.InfoContext(ctx, "Operation started",
		slog.String("operation_id", req.ID),
		slog.String("day", req.Window.Day()))
	return req.ID, nil
}

func (s *OperationService) run(ctx context.Context, req operations.OperationRequest, done chan struct{}) {
	defer close(done)
	resp, err := s.manager.Execute(ctx, req)
	if resp == nil {
		resp = &operations.OperationResponse{ID: req.ID, Status: operations.OperationStatusFailed}
		if err != nil {
			resp.Error = err.Error()
		}
	}

	s.mu.Lock()
	s.current = nil
	s.last = resp
	s.mu.Unlock()
}

// Status returns the running request, if any, and the last finished run.
func (s *OperationService) Status() OperationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return OperationStatus{Running: s.current != nil, Current: s.current, Last: s.last}
}

// Wait blocks until the running operation, if any, finishes or ctx ends.
func (s *OperationService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
