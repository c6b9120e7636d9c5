// Package message converts between the runtime's chat message shapes and
// the chat format a flow keeps in its state under the "messages" key. The
// flow side uses plain role/content documents with function-call style tool
// invocations, so a flow can hand its history directly to a chat completion
// API.
package message

import (
	"encoding/json"
)

// Message is one runtime chat message. It is a union: exactly one of the
// three shapes is populated.
//
//   - text message: ID, Role, Content
//   - action execution: ID, Name, Arguments
//   - action result: ID, ActionExecutionID, ActionName, Result
type Message struct {
	ID                string         `json:"id,omitempty"`
	Role              string         `json:"role,omitempty"`
	Content           string         `json:"content,omitempty"`
	Name              string         `json:"name,omitempty"`
	Arguments         map[string]any `json:"arguments,omitempty"`
	ActionExecutionID string         `json:"actionExecutionId,omitempty"`
	ActionName        string         `json:"actionName,omitempty"`
	Result            string         `json:"result,omitempty"`
}

// IsActionExecution reports whether the message is a tool invocation.
func (m Message) IsActionExecution() bool { return m.Name != "" && m.ActionExecutionID == "" }

// IsResult reports whether the message is a tool result.
func (m Message) IsResult() bool { return m.ActionExecutionID != "" }

// IsText reports whether the message is a plain chat message.
func (m Message) IsText() bool { return !m.IsActionExecution() && !m.IsResult() }

// ToFlow converts runtime messages into the flow chat format.
func ToFlow(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		switch {
		case m.IsActionExecution():
			args, err := json.Marshal(m.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			out = append(out, map[string]any{
				"id":   m.ID,
				"role": "assistant",
				"tool_calls": []any{
					map[string]any{
						"id":   m.ID,
						"type": "function",
						"function": map[string]any{
							"name":      m.Name,
							"arguments": string(args),
						},
					},
				},
			})
		case m.IsResult():
			out = append(out, map[string]any{
				"id":           m.ID,
				"role":         "tool",
				"tool_call_id": m.ActionExecutionID,
				"content":      m.Result,
			})
		default:
			out = append(out, map[string]any{
				"id":      m.ID,
				"role":    m.Role,
				"content": m.Content,
			})
		}
	}
	return out
}

// FromFlow converts flow chat messages back into runtime messages. An
// assistant message carrying several tool calls fans out into one action
// execution message per call.
func FromFlow(messages []map[string]any) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if calls, ok := m["tool_calls"].([]any); ok && len(calls) > 0 {
			for _, raw := range calls {
				call, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				fn, _ := call["function"].(map[string]any)
				msg := Message{ID: str(call["id"])}
				if fn != nil {
					msg.Name = str(fn["name"])
					msg.Arguments = parseArguments(fn["arguments"])
				}
				out = append(out, msg)
			}
			continue
		}
		if str(m["role"]) == "tool" {
			out = append(out, Message{
				ID:                str(m["id"]),
				ActionExecutionID: str(m["tool_call_id"]),
				Result:            str(m["content"]),
			})
			continue
		}
		out = append(out, Message{
			ID:      str(m["id"]),
			Role:    str(m["role"]),
			Content: str(m["content"]),
		})
	}
	return out
}

// ToCrew converts runtime messages into the flat role/content transcript a
// crew receives as its chat history input.
func ToCrew(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		entry := map[string]any{"role": m.Role, "content": m.Content}
		if m.IsResult() {
			entry["role"] = "tool"
			entry["content"] = m.Result
		}
		out = append(out, entry)
	}
	return out
}

func parseArguments(v any) map[string]any {
	switch args := v.(type) {
	case map[string]any:
		return args
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(args), &parsed); err == nil {
			return parsed
		}
	}
	return map[string]any{}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
