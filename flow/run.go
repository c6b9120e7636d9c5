package flow

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Run executes f to completion on the calling goroutine, reporting its
// lifecycle through q. The relay starts Run on a dedicated goroutine and
// drains q concurrently.
//
// Run installs initialState before kickoff, always enqueues a terminal
// event (flow_execution_finished or flow_execution_error) and never
// panics: a panicking flow is converted into a flow error carrying the
// stack trace.
func Run(ctx context.Context, f Flow, q *Queue, initialState map[string]any) {
	f.SetState(initialState)

	defer func() {
		if r := recover(); r != nil {
			q.Push(Event{
				Type:  EventTypeFlowExecutionError,
				Err:   fmt.Errorf("flow panic: %v", r),
				Trace: string(debug.Stack()),
			})
		}
	}()

	q.Push(Event{Type: EventTypeFlowExecutionStarted})

	if err := f.Kickoff(ctx, NewEventContext(q)); err != nil {
		q.Push(Event{Type: EventTypeFlowExecutionError, Err: err})
		return
	}

	q.Push(Event{Type: EventTypeFlowExecutionFinished})
}
