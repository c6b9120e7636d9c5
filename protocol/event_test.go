package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWireShapes(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  map[string]any
	}{
		{
			name:  "text message start",
			event: NewTextMessageStart("m1"),
			want:  map[string]any{"type": "TextMessageStart", "messageId": "m1"},
		},
		{
			name: "text message start with parent",
			event: func() Event {
				ev := NewTextMessageStart("m1")
				ev.ParentMessageID = "p1"
				return ev
			}(),
			want: map[string]any{"type": "TextMessageStart", "messageId": "m1", "parentMessageId": "p1"},
		},
		{
			name:  "text message content",
			event: NewTextMessageContent("m1", "hello"),
			want:  map[string]any{"type": "TextMessageContent", "messageId": "m1", "content": "hello"},
		},
		{
			name:  "text message end",
			event: NewTextMessageEnd("m1"),
			want:  map[string]any{"type": "TextMessageEnd", "messageId": "m1"},
		},
		{
			name:  "action execution start",
			event: NewActionExecutionStart("a1", "search"),
			want:  map[string]any{"type": "ActionExecutionStart", "actionExecutionId": "a1", "actionName": "search"},
		},
		{
			name:  "action execution args",
			event: NewActionExecutionArgs("a1", `{"q":`),
			want:  map[string]any{"type": "ActionExecutionArgs", "actionExecutionId": "a1", "args": `{"q":`},
		},
		{
			name:  "action execution end",
			event: NewActionExecutionEnd("a1"),
			want:  map[string]any{"type": "ActionExecutionEnd", "actionExecutionId": "a1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgentStateMessage(t *testing.T) {
	ev := NewAgentStateMessage(AgentStateMessageInput{
		ThreadID:  "t1",
		AgentName: "researcher",
		NodeName:  "plan",
		RunID:     "r1",
		Active:    true,
		State:     `{"x":1}`,
		Running:   true,
	})

	assert.Equal(t, EventTypeAgentStateMessage, ev.EventType())
	assert.Equal(t, "assistant", ev.Role)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "AgentStateMessage", got["type"])
	assert.Equal(t, `{"x":1}`, got["state"])
	assert.Equal(t, true, got["active"])
	assert.Equal(t, true, got["running"])
}

func TestEncodeJSONLines(t *testing.T) {
	batch := Emit(
		NewTextMessageStart("m1"),
		NewTextMessageContent("m1", "hi"),
		NewTextMessageEnd("m1"),
	)

	encoded, err := batch.EncodeJSONLines()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(encoded, "\n"), "\n")
	require.Len(t, lines, 3)

	wantTypes := []string{"TextMessageStart", "TextMessageContent", "TextMessageEnd"}
	for i, line := range lines {
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &got))
		assert.Equal(t, wantTypes[i], got["type"])
		assert.Equal(t, "m1", got["messageId"])
	}
}

func TestEncodeJSONLinesEmptyBatch(t *testing.T) {
	encoded, err := EventBatch{}.EncodeJSONLines()
	require.NoError(t, err)
	assert.Empty(t, encoded)
}
