package operations

import (
	"sync"
	"time"

	"aqdaily/internal/availability"
)

// OperationStatus represents the overall operation status
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState is the shared state of one run. Steps hand data to later
// steps through it: the scrape step fills Ledger, the report step reads it.
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	Window    Window          `json:"window"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	ledger  *availability.Ledger
	outputs []string

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string, window Window) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		Window:    window,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.finish(OperationStatusCompleted, nil)
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.finish(OperationStatusFailed, err)
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.finish(OperationStatusCancelled, err)
}

func (p *OperationState) finish(status OperationStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = status
	p.Error = err
}

// GetStep returns the state of a specific Step
func (p *OperationState) GetStep(id string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[id]
}

// SetStep updates the state of a specific Step
func (p *OperationState) SetStep(id string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[id] = state
}

// Ledger returns the availability ledger, nil before scraping ran.
func (p *OperationState) Ledger() *availability.Ledger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ledger
}

// SetLedger stores the availability ledger.
func (p *OperationState) SetLedger(l *availability.Ledger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ledger = l
}

// AddOutput records a file written during the run.
func (p *OperationState) AddOutput(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs = append(p.outputs, path)
}

// Outputs returns every file written so far.
func (p *OperationState) Outputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.outputs...)
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
