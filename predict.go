package agentrelay

import (
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/protocol"
)

// predictState incrementally reconstructs predicted application state from
// streaming tool call argument fragments. It returns a state snapshot when
// the fragment produced at least one new predicted value, nil otherwise.
// Malformed or incomplete argument JSON means "no prediction available
// yet", never an error.
func (a *Agent) predictState(
	ev flow.Event,
	es *executionState,
	state map[string]any,
	threadID, runID string,
) *protocol.AgentStateMessage {
	switch ev.Type {
	case flow.EventTypeActionExecutionStart:
		es.startToolCall(ev.ActionName)
		return nil

	case flow.EventTypeActionExecutionArgs:
		es.appendArguments(ev.RawArgs)

		if !es.toolCallTracked() {
			return nil
		}

		parsed, err := a.parser.Parse(es.argumentBuffer)
		if err != nil {
			return nil
		}
		arguments, ok := parsed.(map[string]any)
		if !ok {
			return nil
		}

		updated := false
		for key, cfg := range es.predictConfig {
			if cfg.ToolName != es.currentToolCall {
				continue
			}
			if cfg.ToolArgument != "" {
				value, present := arguments[cfg.ToolArgument]
				if !present || value == nil {
					continue
				}
				es.predictedState[key] = value
				updated = true
				continue
			}
			es.predictedState[key] = arguments
			updated = true
		}
		if !updated {
			return nil
		}

		merged := make(map[string]any, len(state)+len(es.predictedState))
		for k, v := range state {
			merged[k] = v
		}
		for k, v := range es.predictedState {
			merged[k] = v
		}

		msg := a.stateMessage(es, threadID, runID, merged, true)
		return &msg
	}

	return nil
}

// toolCallTracked reports whether the in-flight tool call is referenced by
// any predict state configuration entry.
func (es *executionState) toolCallTracked() bool {
	if es.currentToolCall == "" {
		return false
	}
	for _, cfg := range es.predictConfig {
		if cfg.ToolName == es.currentToolCall {
			return true
		}
	}
	return false
}
