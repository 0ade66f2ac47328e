package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"aqdaily/internal/infrastructure"
)

// Manager runs registered steps sequentially over one window.
type Manager struct {
	registry *Registry
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewManager creates a manager. A nil registry starts empty; nil metrics
// disables instrumentation.
func NewManager(registry *Registry, metrics *infrastructure.Metrics, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Manager{registry: registry, metrics: metrics, logger: logger}
}

// RegisterStep registers a Step with the manager
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// Registry returns the step registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Execute runs the requested steps in registration order. A failing step
// stops the run and marks the rest skipped.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Window.Start.IsZero() || !req.Window.End.After(req.Window.Start) {
		err := NewValidationError("", fmt.Sprintf("invalid window %s - %s", req.Window.Start, req.Window.End))
		return nil, err
	}

	steps, err := m.registry.Resolve(req.Steps)
	if err != nil {
		return nil, err
	}

	state := NewOperationState(req.ID, req.Window)
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx = infrastructure.WithTraceID(ctx, req.ID)
	ctx, span := traceOperation(ctx, state)

	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.String("day", req.Window.Day()),
		slog.Int("step_count", len(steps)))

	state.Start()
	runErr := m.executeSequential(ctx, state, steps)
	switch {
	case runErr == nil:
		state.Complete()
	case GetErrorType(runErr) == ErrorTypeCancellation:
		state.Cancel(runErr)
	default:
		state.Fail(runErr)
	}
	endSpan(span, runErr)

	m.logger.InfoContext(ctx, "operation_finished",
		slog.String("operation_id", req.ID),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))

	return m.createResponse(state), runErr
}

func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	stepCtx, span := traceStep(ctx, state.ID, step)

	m.logger.InfoContext(stepCtx, "step_start",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.metrics.ObserveStep(step.ID(), duration.Seconds())

	if err != nil {
		stepState.Fail(err)
		endSpan(span, err)
		m.logger.ErrorContext(stepCtx, "step_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if ctx.Err() != nil {
			return NewCancellationError(step.ID(), err)
		}
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	endSpan(span, nil)
	m.logger.InfoContext(stepCtx, "step_completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
