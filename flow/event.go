package flow

// EventType discriminates the internal lifecycle events a running flow
// produces.
type EventType string

const (
	// EventTypeEmitMessage carries one complete assistant message.
	EventTypeEmitMessage EventType = "emit_message"
	// EventTypeEmitToolCall carries one complete tool call with its
	// arguments.
	EventTypeEmitToolCall EventType = "emit_tool_call"
	// EventTypeEmitState carries an explicit intermediate state snapshot.
	EventTypeEmitState EventType = "emit_state"
	// EventTypeExit signals that the flow requests run termination.
	EventTypeExit EventType = "exit"
	// EventTypePredictState configures state prediction from streaming
	// tool call arguments.
	EventTypePredictState EventType = "predict_state"
	// EventTypeMethodExecutionStarted marks the start of a flow step.
	EventTypeMethodExecutionStarted EventType = "method_execution_started"
	// EventTypeMethodExecutionFinished marks the end of a flow step.
	EventTypeMethodExecutionFinished EventType = "method_execution_finished"
	// EventTypeFlowExecutionStarted marks the start of the flow run.
	EventTypeFlowExecutionStarted EventType = "flow_execution_started"
	// EventTypeFlowExecutionFinished marks successful flow completion.
	EventTypeFlowExecutionFinished EventType = "flow_execution_finished"
	// EventTypeFlowExecutionError marks flow failure.
	EventTypeFlowExecutionError EventType = "flow_execution_error"
	// EventTypeTextMessageStart opens a streamed text message.
	EventTypeTextMessageStart EventType = "text_message_start"
	// EventTypeTextMessageContent carries a streamed text chunk.
	EventTypeTextMessageContent EventType = "text_message_content"
	// EventTypeTextMessageEnd closes a streamed text message.
	EventTypeTextMessageEnd EventType = "text_message_end"
	// EventTypeActionExecutionStart opens a streamed tool call.
	EventTypeActionExecutionStart EventType = "action_execution_start"
	// EventTypeActionExecutionArgs carries a raw tool argument text chunk.
	EventTypeActionExecutionArgs EventType = "action_execution_args"
	// EventTypeActionExecutionEnd closes a streamed tool call.
	EventTypeActionExecutionEnd EventType = "action_execution_end"
)

// StateKeyConfig declares which tool feeds a predicted state key. When
// ToolArgument is set only that argument field is mirrored into the key,
// otherwise the entire argument object is.
type StateKeyConfig struct {
	ToolName     string `json:"tool_name"`
	ToolArgument string `json:"tool_argument,omitempty"`
}

// PredictStateConfig maps output state keys to the tool calls that feed
// them.
type PredictStateConfig map[string]StateKeyConfig

// Event is one internal lifecycle event. Which fields are set depends on
// Type; unused fields stay zero.
type Event struct {
	Type EventType

	// Message fields (emit_message, text_message_*).
	MessageID       string
	ParentMessageID string
	Message         string
	Content         string

	// Tool call fields (emit_tool_call, action_execution_*).
	Name              string
	Args              map[string]any
	ActionExecutionID string
	ActionName        string
	RawArgs           string

	// State fields (emit_state, predict_state).
	State  map[string]any
	Config PredictStateConfig

	// Error fields (flow_execution_error).
	Err   error
	Trace string
}
