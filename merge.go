package agentrelay

import (
	"github.com/hupe1980/agentrelay/flow"
)

// MergeStateInput bundles everything a merge hook may consider when
// building the flow's initial state.
type MergeStateInput struct {
	// State is the caller-supplied state document.
	State map[string]any
	// Messages is the conversation already converted to the flow chat
	// format.
	Messages []map[string]any
	// Actions lists the available frontend actions.
	Actions []Action
	// AgentName is the executing agent's name.
	AgentName string
	// Flow is the flow instance about to run.
	Flow flow.Flow
}

// MergeStateFunc builds the initial flow state from the caller's input.
// The returned document is deep copied before the flow receives it, so
// implementations may alias input values freely.
type MergeStateFunc func(input MergeStateInput) map[string]any

// DefaultMergeState strips a leading system message, wraps every action in
// a function call envelope and injects messages plus the action list under
// the runtime's namespaced key. All caller state keys are merged
// unconditionally.
func DefaultMergeState(input MergeStateInput) map[string]any {
	messages := input.Messages
	if len(messages) > 0 {
		if role, _ := messages[0]["role"].(string); role == "system" {
			messages = messages[1:]
		}
	}

	actions := make([]any, 0, len(input.Actions))
	for _, action := range input.Actions {
		fn := map[string]any{"name": action.Name}
		if action.Description != "" {
			fn["description"] = action.Description
		}
		if action.Parameters != nil {
			fn["parameters"] = action.Parameters
		}
		actions = append(actions, map[string]any{
			"type":     "function",
			"function": fn,
		})
	}

	merged := make(map[string]any, len(input.State)+2)
	for k, v := range input.State {
		merged[k] = v
	}
	merged["messages"] = messages
	merged["copilotkit"] = map[string]any{"actions": actions}

	return merged
}
