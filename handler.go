package agentrelay

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/protocol"
)

// UnknownEventTypeError reports an internal event whose discriminant is not
// part of the mapping table. This is an integration error, never swallowed.
type UnknownEventTypeError struct {
	Type flow.EventType
}

// Error implements the error interface.
func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown flow event type: %q", e.Type)
}

// handleFlowEvent translates one internal lifecycle event into zero or more
// protocol events and applies its side effects to the execution state.
// state is the flow's live state document read at the event boundary.
func (a *Agent) handleFlowEvent(
	ev flow.Event,
	es *executionState,
	state map[string]any,
	threadID, runID string,
) (protocol.EventBatch, error) {
	switch ev.Type {
	case flow.EventTypeEmitMessage:
		return protocol.Emit(
			protocol.NewTextMessageStart(ev.MessageID),
			protocol.NewTextMessageContent(ev.MessageID, ev.Message),
			protocol.NewTextMessageEnd(ev.MessageID),
		), nil

	case flow.EventTypeEmitToolCall:
		args, err := json.Marshal(ev.Args)
		if err != nil {
			args = []byte("{}")
		}
		return protocol.Emit(
			protocol.NewActionExecutionStart(ev.MessageID, ev.Name),
			protocol.NewActionExecutionArgs(ev.MessageID, string(args)),
			protocol.NewActionExecutionEnd(ev.MessageID),
		), nil

	case flow.EventTypeEmitState:
		return protocol.Emit(a.stateMessage(es, threadID, runID, ev.State, true)), nil

	case flow.EventTypeExit:
		es.shouldExit = true
		return nil, nil

	case flow.EventTypePredictState:
		es.predictConfig = ev.Config
		return nil, nil

	case flow.EventTypeMethodExecutionStarted:
		es.nodeName = ev.Name
		return protocol.Emit(a.stateMessage(es, threadID, runID, state, true)), nil

	case flow.EventTypeMethodExecutionFinished:
		es.finishMethod()
		return protocol.Emit(a.stateMessage(es, threadID, runID, state, false)), nil

	case flow.EventTypeFlowExecutionStarted:
		return nil, nil

	case flow.EventTypeFlowExecutionFinished:
		es.markFinished()
		return nil, nil

	case flow.EventTypeFlowExecutionError:
		a.logger.Error("flow execution error: %v\n%s", ev.Err, ev.Trace)
		es.markFinished()
		return nil, nil

	case flow.EventTypeTextMessageStart:
		start := protocol.NewTextMessageStart(ev.MessageID)
		start.ParentMessageID = ev.ParentMessageID
		return protocol.Emit(start), nil

	case flow.EventTypeTextMessageContent:
		return protocol.Emit(protocol.NewTextMessageContent(ev.MessageID, ev.Content)), nil

	case flow.EventTypeTextMessageEnd:
		return protocol.Emit(protocol.NewTextMessageEnd(ev.MessageID)), nil

	case flow.EventTypeActionExecutionStart:
		start := protocol.NewActionExecutionStart(ev.ActionExecutionID, ev.ActionName)
		start.ParentMessageID = ev.ParentMessageID
		batch := protocol.Emit(start)
		if predicted := a.predictState(ev, es, state, threadID, runID); predicted != nil {
			batch = append(batch, *predicted)
		}
		return batch, nil

	case flow.EventTypeActionExecutionArgs:
		batch := protocol.Emit(protocol.NewActionExecutionArgs(ev.ActionExecutionID, ev.RawArgs))
		if predicted := a.predictState(ev, es, state, threadID, runID); predicted != nil {
			batch = append(batch, *predicted)
		}
		return batch, nil

	case flow.EventTypeActionExecutionEnd:
		return protocol.Emit(protocol.NewActionExecutionEnd(ev.ActionExecutionID)), nil

	default:
		return nil, &UnknownEventTypeError{Type: ev.Type}
	}
}

// stateMessage builds an agent state snapshot from a state document with
// the default key filtering applied.
func (a *Agent) stateMessage(es *executionState, threadID, runID string, state map[string]any, active bool) protocol.AgentStateMessage {
	return protocol.NewAgentStateMessage(protocol.AgentStateMessageInput{
		ThreadID:  threadID,
		AgentName: a.name,
		NodeName:  es.nodeName,
		RunID:     runID,
		Active:    active,
		State:     encodeState(FilterState(state)),
		Running:   true,
	})
}
