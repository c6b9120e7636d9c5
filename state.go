package agentrelay

import (
	"encoding/json"

	"github.com/hupe1980/agentrelay/flow"
)

// executionState is the per-run bookkeeping threaded through every event
// handling call. It is owned by the relay goroutine; no locking needed.
type executionState struct {
	shouldExit bool
	nodeName   string
	isFinished bool

	predictConfig   flow.PredictStateConfig
	predictedState  map[string]any
	argumentBuffer  string
	currentToolCall string // empty when no tool call is in flight
}

func newExecutionState() *executionState {
	return &executionState{
		nodeName:       "start",
		predictConfig:  flow.PredictStateConfig{},
		predictedState: map[string]any{},
	}
}

// startToolCall begins accumulating arguments for a new tool call. The
// buffer and the call name always reset together.
func (es *executionState) startToolCall(name string) {
	es.currentToolCall = name
	es.argumentBuffer = ""
}

func (es *executionState) appendArguments(chunk string) {
	es.argumentBuffer += chunk
}

// finishMethod clears all predictor bookkeeping when a flow step ends.
func (es *executionState) finishMethod() {
	es.predictConfig = flow.PredictStateConfig{}
	es.predictedState = map[string]any{}
	es.currentToolCall = ""
	es.argumentBuffer = ""
}

// markFinished is monotonic: once a run is finished it stays finished.
func (es *executionState) markFinished() {
	es.isFinished = true
}

// FilterState returns a copy of state without the excluded keys. Without
// explicit keys it removes "messages" and "id". Filtering an already
// filtered document is a no-op.
func FilterState(state map[string]any, excludeKeys ...string) map[string]any {
	if len(excludeKeys) == 0 {
		excludeKeys = []string{"messages", "id"}
	}
	filtered := make(map[string]any, len(state))
	for k, v := range state {
		excluded := false
		for _, ex := range excludeKeys {
			if k == ex {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered[k] = v
		}
	}
	return filtered
}

// encodeState serializes a filtered state document for an agent state
// message. Serialization failures degrade to an empty document rather than
// failing the run.
func encodeState(state map[string]any) string {
	data, err := json.Marshal(state)
	if err != nil {
		return "{}"
	}
	return string(data)
}
