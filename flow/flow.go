package flow

import (
	"context"
	"encoding/json"
	"sync"
)

// Flow is a flow-style agent: it owns a mutable state document and emits
// lifecycle events through the EventContext while Kickoff runs. Kickoff
// blocks until the flow completes; the relay executes it on a dedicated
// goroutine.
type Flow interface {
	// State returns the flow's current state document.
	State() map[string]any
	// SetState replaces the flow's state document before execution.
	SetState(state map[string]any)
	// Kickoff runs the flow to completion.
	Kickoff(ctx context.Context, ec *EventContext) error
}

// Output is the result of a crew run.
type Output struct {
	// Raw is the crew's final textual output.
	Raw string
}

// Crew is a crew-style agent: a single blocking pipeline that consumes an
// input document and produces one final output.
type Crew interface {
	Kickoff(ctx context.Context, inputs map[string]any) (Output, error)
}

// Base provides the state storage half of the Flow interface. Embed it and
// implement Kickoff. Access is guarded so the relay can read state at step
// boundaries while the flow goroutine owns mutation.
type Base struct {
	mu    sync.RWMutex
	state map[string]any
}

// State returns a snapshot of the flow's current state document. The
// returned map is a copy, so the relay can read it concurrently with
// UpdateState calls on the flow goroutine.
func (b *Base) State() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make(map[string]any, len(b.state))
	for k, v := range b.state {
		snapshot[k] = v
	}
	return snapshot
}

// SetState replaces the flow's state document.
func (b *Base) SetState(state map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state
}

// UpdateState applies fn to the state document under the write lock.
func (b *Base) UpdateState(fn func(state map[string]any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		b.state = map[string]any{}
	}
	fn(b.state)
}

// CopyState returns a deep copy of a state document via a JSON round trip.
// Values that do not survive JSON serialization fall back to a shallow
// copy of the top-level map.
func CopyState(state map[string]any) map[string]any {
	data, err := json.Marshal(state)
	if err == nil {
		var copied map[string]any
		if err := json.Unmarshal(data, &copied); err == nil && copied != nil {
			return copied
		}
	}
	shallow := make(map[string]any, len(state))
	for k, v := range state {
		shallow[k] = v
	}
	return shallow
}
