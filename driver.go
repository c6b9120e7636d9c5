package agentrelay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/message"
	"github.com/hupe1980/agentrelay/protocol"
)

// executeFlow runs a flow on its own goroutine and relays every lifecycle
// event it produces, in order, as protocol event batches. The batch
// channel is unbuffered: the relay never gets more than one batch ahead of
// the consumer, which is what lets partial output reach the frontend
// incrementally.
func (a *Agent) executeFlow(ctx context.Context, input ExecuteInput) (<-chan protocol.EventBatch, <-chan error, error) {
	if input.ThreadID == "" {
		return nil, nil, ErrThreadIDRequired
	}

	f := a.newFlow()
	runID := uuid.NewString()
	es := newExecutionState()
	logger := a.logger

	initial := a.mergeState(MergeStateInput{
		State:     input.State,
		Messages:  message.ToFlow(input.Messages),
		Actions:   input.Actions,
		AgentName: a.name,
		Flow:      f,
	})

	queue := flow.NewQueue()
	done := make(chan struct{})

	// The flow owns its state for the duration of the run; it gets a deep
	// copy so the caller's document is never mutated.
	go func() {
		defer close(done)
		flow.Run(ctx, f, queue, flow.CopyState(initial))
	}()

	batches := make(chan protocol.EventBatch)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(batches)

		start := time.Now()
		relayed := 0

		for !es.isFinished {
			ev := queue.Pop()

			batch, err := a.handleFlowEvent(ev, es, f.State(), input.ThreadID, runID)
			if err != nil {
				errs <- err
				return
			}
			if len(batch) == 0 {
				continue
			}
			relayed++
			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}
		}

		// Terminal event processed: no more queue reads, but the worker is
		// joined so no goroutine outlives the run. Anything it still
		// queued is discarded.
		<-done

		final := a.finalStateMessage(f, es, input.ThreadID, runID)
		select {
		case batches <- protocol.Emit(final):
		case <-ctx.Done():
			return
		}

		logger.Info("run completed agent=%s thread_id=%s run_id=%s batches=%d duration=%s exit_requested=%t",
			a.name, input.ThreadID, runID, relayed+1, time.Since(start), es.shouldExit)
	}()

	return batches, errs, nil
}

// finalStateMessage synthesizes the closing state snapshot from the flow's
// final state: message history converted back to the runtime format, "id"
// excluded, inactive, with running reflecting whether an explicit exit was
// requested.
func (a *Agent) finalStateMessage(f flow.Flow, es *executionState, threadID, runID string) protocol.AgentStateMessage {
	state := map[string]any{}
	for k, v := range f.State() {
		state[k] = v
	}
	if raw, ok := state["messages"]; ok {
		state["messages"] = message.FromFlow(flowMessages(raw))
	}

	return protocol.NewAgentStateMessage(protocol.AgentStateMessageInput{
		ThreadID:  threadID,
		AgentName: a.name,
		NodeName:  es.nodeName,
		RunID:     runID,
		Active:    false,
		State:     encodeState(FilterState(state, "id")),
		Running:   !es.shouldExit,
	})
}

// flowMessages normalizes the state's message history, which is
// []map[string]any when the flow wrote it directly and []any after a JSON
// deep copy.
func flowMessages(raw any) []map[string]any {
	switch msgs := raw.(type) {
	case []map[string]any:
		return msgs
	case []any:
		out := make([]map[string]any, 0, len(msgs))
		for _, m := range msgs {
			if doc, ok := m.(map[string]any); ok {
				out = append(out, doc)
			}
		}
		return out
	}
	return nil
}

// executeCrew runs a crew pipeline to completion and emits its output as a
// single text message batch.
func (a *Agent) executeCrew(ctx context.Context, input ExecuteInput) (<-chan protocol.EventBatch, <-chan error, error) {
	crew := a.newCrew()

	messages := input.Messages
	if len(messages) > 0 && messages[0].Role == "system" {
		messages = messages[1:]
	}

	var textInput string
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if last.Content != "" {
			textInput = last.Content
		} else if last.Result != "" {
			textInput = last.Result
		}
	}

	chatHistory, err := json.Marshal(message.ToCrew(messages))
	if err != nil {
		chatHistory = []byte("[]")
	}

	inputs := map[string]any{
		a.crewInputKey:       textInput,
		"crew_chat_messages": string(chatHistory),
	}

	batches := make(chan protocol.EventBatch)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(batches)

		output, err := crew.Kickoff(ctx, inputs)
		if err != nil {
			errs <- err
			return
		}

		messageID := uuid.NewString()
		batch := protocol.Emit(
			protocol.NewTextMessageStart(messageID),
			protocol.NewTextMessageContent(messageID, output.Raw),
			protocol.NewTextMessageEnd(messageID),
		)
		select {
		case batches <- batch:
		case <-ctx.Done():
		}
	}()

	return batches, errs, nil
}
