package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered operation steps in registration order.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewRegistry creates an empty step registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}
	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}
	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, NewNotFoundError(id)
	}
	return step, nil
}

// Resolve returns the steps named by ids in registration order. No ids
// means every registered step.
func (r *Registry) Resolve(ids []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.steps[id]; !ok {
			return nil, NewNotFoundError(id)
		}
		want[id] = true
	}

	steps := make([]Step, 0, len(r.order))
	for _, id := range r.order {
		if len(ids) == 0 || want[id] {
			steps = append(steps, r.steps[id])
		}
	}
	return steps, nil
}

// IDs returns the registered step IDs in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
