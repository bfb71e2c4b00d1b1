// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress tracks in-memory operation state for workers and
// diagnostic consumers. Updates are best effort: an unknown operation id is
// ignored, never an error.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is an operation's lifecycle state. Operations move from running to
// exactly one terminal state and never transition again.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Step is one recorded progress event. Appended, never mutated.
type Step struct {
	Number      int
	Description string
	Status      Status
	Timestamp   time.Time
}

// Operation is the tracked state of one unit of work.
type Operation struct {
	ID          string
	Name        string
	TotalSteps  int
	CurrentStep int
	Status      Status
	Steps       []Step
	StartTime   time.Time
	EndTime     time.Time // zero while running
	Percentage  float64
	Metadata    map[string]string
	Error       string

	// Remaining estimates time left from the pace so far; valid only when
	// HasEstimate is true (at least one step must have completed).
	Remaining   time.Duration
	HasEstimate bool
}

// DefaultMaxOperations bounds how many operations the tracker retains.
const DefaultMaxOperations = 256

// Tracker holds the operation map. A single coarse lock guards all state;
// updates are bookkeeping only, so contention stays light.
type Tracker struct {
	mu     sync.Mutex
	ops    map[string]*Operation
	order  []string // insertion order, for eviction
	maxOps int
	now    func() time.Time // replaced in tests
}

// NewTracker creates a tracker retaining at most maxOps operations; values
// below 1 use DefaultMaxOperations. When the cap is exceeded the oldest
// terminal operations are evicted; running operations are never evicted.
func NewTracker(maxOps int) *Tracker {
	if maxOps < 1 {
		maxOps = DefaultMaxOperations
	}
	return &Tracker{
		ops:    make(map[string]*Operation),
		maxOps: maxOps,
		now:    time.Now,
	}
}

// StartOperation registers a new running operation and returns its id.
func (t *Tracker) StartOperation(name string, totalSteps int, metadata map[string]string) string {
	id := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.ops[id] = &Operation{
		ID:         id,
		Name:       name,
		TotalSteps: totalSteps,
		Status:     StatusRunning,
		StartTime:  t.now(),
		Metadata:   metadata,
	}
	t.order = append(t.order, id)
	t.evictLocked()
	return id
}

// UpdateProgress records a step for the operation. step is clamped into
// [0, TotalSteps] and CurrentStep never decreases. Unknown ids and terminal
// operations are ignored.
func (t *Tracker) UpdateProgress(id string, step int, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}

	if step < 0 {
		step = 0
	}
	if step > op.TotalSteps {
		step = op.TotalSteps
	}
	if step < op.CurrentStep {
		step = op.CurrentStep
	}
	op.CurrentStep = step

	op.Steps = append(op.Steps, Step{
		Number:      step,
		Description: description,
		Status:      StatusRunning,
		Timestamp:   t.now(),
	})

	total := op.TotalSteps
	if total < 1 {
		total = 1
	}
	op.Percentage = 100 * float64(step) / float64(total)

	if step > 0 {
		elapsed := t.now().Sub(op.StartTime)
		op.Remaining = time.Duration(float64(elapsed) / float64(step) * float64(op.TotalSteps-step))
		op.HasEstimate = true
	}
}

// CompleteOperation moves the operation to its terminal state. Success
// forces the percentage to 100. Unknown ids are ignored.
func (t *Tracker) CompleteOperation(id string, success bool, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.ops[id]
	if !ok || op.Status.Terminal() {
		return
	}

	op.EndTime = t.now()
	if success {
		op.Status = StatusCompleted
		op.Percentage = 100
	} else {
		op.Status = StatusFailed
		op.Error = errMsg
	}
	op.Remaining = 0
	op.HasEstimate = false
}

// Operation returns a copy of the tracked operation, or false when the id
// is unknown or already evicted.
func (t *Tracker) Operation(id string) (Operation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.ops[id]
	if !ok {
		return Operation{}, false
	}

	out := *op
	out.Steps = make([]Step, len(op.Steps))
	copy(out.Steps, op.Steps)
	if op.Metadata != nil {
		out.Metadata = make(map[string]string, len(op.Metadata))
		for k, v := range op.Metadata {
			out.Metadata[k] = v
		}
	}
	return out, true
}

// Len returns the number of retained operations.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

// evictLocked drops the oldest terminal operations until the map fits the
// cap. Callers hold t.mu.
func (t *Tracker) evictLocked() {
	if len(t.ops) <= t.maxOps {
		return
	}

	kept := t.order[:0]
	for _, id := range t.order {
		op := t.ops[id]
		if len(t.ops) > t.maxOps && op != nil && op.Status.Terminal() {
			delete(t.ops, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}
