package flow

import (
	"github.com/google/uuid"
)

// EventContext is handed to a running flow so it can report lifecycle
// events. All emit methods enqueue without blocking and are safe to call
// from the flow goroutine at any point during Kickoff.
type EventContext struct {
	queue *Queue
}

// NewEventContext binds an EventContext to a queue.
func NewEventContext(q *Queue) *EventContext {
	return &EventContext{queue: q}
}

// EmitMessage reports one complete assistant message and returns the
// message id assigned to it.
func (ec *EventContext) EmitMessage(message string) string {
	id := uuid.NewString()
	ec.queue.Push(Event{Type: EventTypeEmitMessage, MessageID: id, Message: message})
	return id
}

// EmitToolCall reports one complete tool call and returns the id assigned
// to it.
func (ec *EventContext) EmitToolCall(name string, args map[string]any) string {
	id := uuid.NewString()
	ec.queue.Push(Event{Type: EventTypeEmitToolCall, MessageID: id, Name: name, Args: args})
	return id
}

// EmitState reports an explicit intermediate state snapshot.
func (ec *EventContext) EmitState(state map[string]any) {
	ec.queue.Push(Event{Type: EventTypeEmitState, State: state})
}

// Exit requests run termination once the flow completes.
func (ec *EventContext) Exit() {
	ec.queue.Push(Event{Type: EventTypeExit})
}

// PredictState configures state prediction from streaming tool call
// arguments for the current step.
func (ec *EventContext) PredictState(config PredictStateConfig) {
	ec.queue.Push(Event{Type: EventTypePredictState, Config: config})
}

// EmitTextMessageStart opens a streamed text message. parentMessageID may
// be empty.
func (ec *EventContext) EmitTextMessageStart(messageID, parentMessageID string) {
	ec.queue.Push(Event{
		Type:            EventTypeTextMessageStart,
		MessageID:       messageID,
		ParentMessageID: parentMessageID,
	})
}

// EmitTextMessageContent streams one text chunk.
func (ec *EventContext) EmitTextMessageContent(messageID, content string) {
	ec.queue.Push(Event{Type: EventTypeTextMessageContent, MessageID: messageID, Content: content})
}

// EmitTextMessageEnd closes a streamed text message.
func (ec *EventContext) EmitTextMessageEnd(messageID string) {
	ec.queue.Push(Event{Type: EventTypeTextMessageEnd, MessageID: messageID})
}

// EmitActionExecutionStart opens a streamed tool call. parentMessageID may
// be empty.
func (ec *EventContext) EmitActionExecutionStart(actionExecutionID, actionName, parentMessageID string) {
	ec.queue.Push(Event{
		Type:              EventTypeActionExecutionStart,
		ActionExecutionID: actionExecutionID,
		ActionName:        actionName,
		ParentMessageID:   parentMessageID,
	})
}

// EmitActionExecutionArgs streams one raw argument text chunk.
func (ec *EventContext) EmitActionExecutionArgs(actionExecutionID, args string) {
	ec.queue.Push(Event{Type: EventTypeActionExecutionArgs, ActionExecutionID: actionExecutionID, RawArgs: args})
}

// EmitActionExecutionEnd closes a streamed tool call.
func (ec *EventContext) EmitActionExecutionEnd(actionExecutionID string) {
	ec.queue.Push(Event{Type: EventTypeActionExecutionEnd, ActionExecutionID: actionExecutionID})
}

// RunStep brackets one named flow step with method execution events. The
// finished event is only emitted when fn succeeds; a failing step surfaces
// through the flow error path instead.
func (ec *EventContext) RunStep(name string, fn func() error) error {
	ec.queue.Push(Event{Type: EventTypeMethodExecutionStarted, Name: name})
	if err := fn(); err != nil {
		return err
	}
	ec.queue.Push(Event{Type: EventTypeMethodExecutionFinished, Name: name})
	return nil
}
