package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventType discriminates the outgoing protocol event variants. The values
// are the wire names expected by the frontend runtime.
type EventType string

const (
	// EventTypeTextMessageStart opens a streamed text message.
	EventTypeTextMessageStart EventType = "TextMessageStart"
	// EventTypeTextMessageContent carries a text message chunk.
	EventTypeTextMessageContent EventType = "TextMessageContent"
	// EventTypeTextMessageEnd closes a streamed text message.
	EventTypeTextMessageEnd EventType = "TextMessageEnd"
	// EventTypeActionExecutionStart opens a streamed action execution.
	EventTypeActionExecutionStart EventType = "ActionExecutionStart"
	// EventTypeActionExecutionArgs carries an action argument chunk.
	EventTypeActionExecutionArgs EventType = "ActionExecutionArgs"
	// EventTypeActionExecutionEnd closes a streamed action execution.
	EventTypeActionExecutionEnd EventType = "ActionExecutionEnd"
	// EventTypeAgentStateMessage is a snapshot of the agent's state.
	EventTypeAgentStateMessage EventType = "AgentStateMessage"
)

// Event is implemented by all outgoing protocol event variants.
type Event interface {
	// EventType returns the wire discriminant of the event.
	EventType() EventType
}

// TextMessageStart announces the beginning of a streamed text message.
type TextMessageStart struct {
	Type            EventType `json:"type"`
	MessageID       string    `json:"messageId"`
	ParentMessageID string    `json:"parentMessageId,omitempty"`
}

// EventType returns the wire discriminant of the event.
func (e TextMessageStart) EventType() EventType { return e.Type }

// NewTextMessageStart creates a TextMessageStart event.
func NewTextMessageStart(messageID string) TextMessageStart {
	return TextMessageStart{Type: EventTypeTextMessageStart, MessageID: messageID}
}

// TextMessageContent carries one chunk of a streamed text message.
type TextMessageContent struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
}

// EventType returns the wire discriminant of the event.
func (e TextMessageContent) EventType() EventType { return e.Type }

// NewTextMessageContent creates a TextMessageContent event.
func NewTextMessageContent(messageID, content string) TextMessageContent {
	return TextMessageContent{Type: EventTypeTextMessageContent, MessageID: messageID, Content: content}
}

// TextMessageEnd closes a streamed text message.
type TextMessageEnd struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId"`
}

// EventType returns the wire discriminant of the event.
func (e TextMessageEnd) EventType() EventType { return e.Type }

// NewTextMessageEnd creates a TextMessageEnd event.
func NewTextMessageEnd(messageID string) TextMessageEnd {
	return TextMessageEnd{Type: EventTypeTextMessageEnd, MessageID: messageID}
}

// ActionExecutionStart announces the beginning of a streamed action
// (tool call) execution.
type ActionExecutionStart struct {
	Type              EventType `json:"type"`
	ActionExecutionID string    `json:"actionExecutionId"`
	ActionName        string    `json:"actionName"`
	ParentMessageID   string    `json:"parentMessageId,omitempty"`
}

// EventType returns the wire discriminant of the event.
func (e ActionExecutionStart) EventType() EventType { return e.Type }

// NewActionExecutionStart creates an ActionExecutionStart event.
func NewActionExecutionStart(actionExecutionID, actionName string) ActionExecutionStart {
	return ActionExecutionStart{
		Type:              EventTypeActionExecutionStart,
		ActionExecutionID: actionExecutionID,
		ActionName:        actionName,
	}
}

// ActionExecutionArgs carries one raw argument text chunk of a streamed
// action execution.
type ActionExecutionArgs struct {
	Type              EventType `json:"type"`
	ActionExecutionID string    `json:"actionExecutionId"`
	Args              string    `json:"args"`
}

// EventType returns the wire discriminant of the event.
func (e ActionExecutionArgs) EventType() EventType { return e.Type }

// NewActionExecutionArgs creates an ActionExecutionArgs event.
func NewActionExecutionArgs(actionExecutionID, args string) ActionExecutionArgs {
	return ActionExecutionArgs{
		Type:              EventTypeActionExecutionArgs,
		ActionExecutionID: actionExecutionID,
		Args:              args,
	}
}

// ActionExecutionEnd closes a streamed action execution.
type ActionExecutionEnd struct {
	Type              EventType `json:"type"`
	ActionExecutionID string    `json:"actionExecutionId"`
}

// EventType returns the wire discriminant of the event.
func (e ActionExecutionEnd) EventType() EventType { return e.Type }

// NewActionExecutionEnd creates an ActionExecutionEnd event.
func NewActionExecutionEnd(actionExecutionID string) ActionExecutionEnd {
	return ActionExecutionEnd{Type: EventTypeActionExecutionEnd, ActionExecutionID: actionExecutionID}
}

// AgentStateMessage is a snapshot of the agent's state at a point in the
// run. State holds the snapshot serialized as a JSON document. Active
// reports whether a flow step is currently executing; Running reports
// whether the run as a whole should be considered in progress.
type AgentStateMessage struct {
	Type      EventType `json:"type"`
	ThreadID  string    `json:"threadId"`
	AgentName string    `json:"agentName"`
	NodeName  string    `json:"nodeName"`
	RunID     string    `json:"runId"`
	Active    bool      `json:"active"`
	Role      string    `json:"role"`
	State     string    `json:"state"`
	Running   bool      `json:"running"`
}

// EventType returns the wire discriminant of the event.
func (e AgentStateMessage) EventType() EventType { return e.Type }

// AgentStateMessageInput bundles the fields of an AgentStateMessage.
type AgentStateMessageInput struct {
	ThreadID  string
	AgentName string
	NodeName  string
	RunID     string
	Active    bool
	State     string
	Running   bool
}

// NewAgentStateMessage creates an AgentStateMessage event. Role is always
// "assistant".
func NewAgentStateMessage(input AgentStateMessageInput) AgentStateMessage {
	return AgentStateMessage{
		Type:      EventTypeAgentStateMessage,
		ThreadID:  input.ThreadID,
		AgentName: input.AgentName,
		NodeName:  input.NodeName,
		RunID:     input.RunID,
		Active:    input.Active,
		Role:      "assistant",
		State:     input.State,
		Running:   input.Running,
	}
}

// EventBatch is a small ordered group of events sharing one emission call.
type EventBatch []Event

// Emit groups events into a batch, preserving order.
func Emit(events ...Event) EventBatch { return EventBatch(events) }

// EncodeJSONLines serializes the batch as one JSON document per line.
func (b EventBatch) EncodeJSONLines() (string, error) {
	var sb strings.Builder
	for _, ev := range b {
		data, err := json.Marshal(ev)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s event: %w", ev.EventType(), err)
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
