package agentrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/message"
	"github.com/hupe1980/agentrelay/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFlow runs a scripted body as its kickoff.
type testFlow struct {
	flow.Base
	body func(ctx context.Context, ec *flow.EventContext, f *testFlow) error
}

func (f *testFlow) Kickoff(ctx context.Context, ec *flow.EventContext) error {
	return f.body(ctx, ec, f)
}

func newFlowAgent(t *testing.T, body func(ctx context.Context, ec *flow.EventContext, f *testFlow) error) *Agent {
	t.Helper()
	agent, err := New("researcher", func(o *Options) {
		o.Flow = func() flow.Flow { return &testFlow{body: body} }
	})
	require.NoError(t, err)
	return agent
}

func collectBatches(t *testing.T, batches <-chan protocol.EventBatch, errs <-chan error) []protocol.EventBatch {
	t.Helper()
	var collected []protocol.EventBatch
	timeout := time.After(5 * time.Second)
	for batches != nil || errs != nil {
		select {
		case batch, ok := <-batches:
			if !ok {
				batches = nil
				continue
			}
			collected = append(collected, batch)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			require.NoError(t, err)
		case <-timeout:
			t.Fatal("timeout waiting for run to complete")
		}
	}
	return collected
}

func TestExecuteFlowRequiresThreadID(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, _ *flow.EventContext, _ *testFlow) error { return nil })

	_, _, err := agent.Execute(context.Background(), ExecuteInput{})
	assert.ErrorIs(t, err, ErrThreadIDRequired)
}

func TestExecuteFlowScenario(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, ec *flow.EventContext, f *testFlow) error {
		return ec.RunStep("a", func() error {
			f.UpdateState(func(state map[string]any) { state["x"] = 1 })
			ec.EmitState(map[string]any{"x": 1})
			return nil
		})
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{
		State:    map[string]any{},
		ThreadID: "thread-1",
	})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	require.Len(t, collected, 4)

	started := collected[0][0].(protocol.AgentStateMessage)
	assert.True(t, started.Active)
	assert.Equal(t, "a", started.NodeName)

	emitted := collected[1][0].(protocol.AgentStateMessage)
	assert.True(t, emitted.Active)
	assert.JSONEq(t, `{"x":1}`, emitted.State)

	finished := collected[2][0].(protocol.AgentStateMessage)
	assert.False(t, finished.Active)
	assert.True(t, finished.Running)

	final := collected[3][0].(protocol.AgentStateMessage)
	assert.False(t, final.Active)
	assert.True(t, final.Running, "no exit was requested")

	var finalState map[string]any
	require.NoError(t, json.Unmarshal([]byte(final.State), &finalState))
	assert.Equal(t, float64(1), finalState["x"])
	assert.NotContains(t, finalState, "id")
	assert.Contains(t, finalState, "messages", "final snapshot includes transformed history")
}

func TestExecuteFlowExitFlagReachesFinalSnapshot(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, ec *flow.EventContext, _ *testFlow) error {
		ec.Exit()
		return nil
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{ThreadID: "thread-1"})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	require.Len(t, collected, 1)
	final := collected[0][0].(protocol.AgentStateMessage)
	assert.False(t, final.Active)
	assert.False(t, final.Running, "explicit exit stops the run")
}

func TestExecuteFlowOrderingMirrorsEmission(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, ec *flow.EventContext, _ *testFlow) error {
		ec.EmitTextMessageStart("m1", "")
		ec.EmitTextMessageContent("m1", "hel")
		ec.EmitTextMessageContent("m1", "lo")
		ec.EmitTextMessageEnd("m1")
		ec.EmitActionExecutionStart("a1", "search", "")
		ec.EmitActionExecutionArgs("a1", `{"q":"go"}`)
		ec.EmitActionExecutionEnd("a1")
		return nil
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{ThreadID: "thread-1"})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	// 7 streamed events plus the final snapshot.
	require.Len(t, collected, 8)

	wantTypes := []protocol.EventType{
		protocol.EventTypeTextMessageStart,
		protocol.EventTypeTextMessageContent,
		protocol.EventTypeTextMessageContent,
		protocol.EventTypeTextMessageEnd,
		protocol.EventTypeActionExecutionStart,
		protocol.EventTypeActionExecutionArgs,
		protocol.EventTypeActionExecutionEnd,
		protocol.EventTypeAgentStateMessage,
	}
	for i, batch := range collected {
		require.Len(t, batch, 1)
		assert.Equal(t, wantTypes[i], batch[0].EventType(), "batch %d", i)
	}
}

func TestExecuteFlowPredictedStateInterleaves(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, ec *flow.EventContext, _ *testFlow) error {
		ec.PredictState(flow.PredictStateConfig{"summary": {ToolName: "save", ToolArgument: "text"}})
		ec.EmitActionExecutionStart("a1", "save", "")
		ec.EmitActionExecutionArgs("a1", `{"te`)
		ec.EmitActionExecutionArgs("a1", `xt": "hel`)
		ec.EmitActionExecutionArgs("a1", `lo"}`)
		ec.EmitActionExecutionEnd("a1")
		return nil
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{ThreadID: "thread-1"})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	// start, args, args, args+prediction, end, final snapshot.
	require.Len(t, collected, 6)

	assert.Len(t, collected[1], 1)
	assert.Len(t, collected[2], 1)

	require.Len(t, collected[3], 2)
	predicted := collected[3][1].(protocol.AgentStateMessage)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(predicted.State), &state))
	assert.Equal(t, "hello", state["summary"])
}

func TestExecuteFlowErrorIsSilentTerminal(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, _ *flow.EventContext, _ *testFlow) error {
		return fmt.Errorf("flow blew up")
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{ThreadID: "thread-1"})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	// Only the final snapshot; the failure does not surface as a fault.
	require.Len(t, collected, 1)
	final := collected[0][0].(protocol.AgentStateMessage)
	assert.False(t, final.Active)
	assert.True(t, final.Running)
}

func TestExecuteFlowDoesNotMutateCallerState(t *testing.T) {
	agent := newFlowAgent(t, func(_ context.Context, _ *flow.EventContext, f *testFlow) error {
		f.UpdateState(func(state map[string]any) { state["x"] = "mutated" })
		return nil
	})

	callerState := map[string]any{"x": "original"}
	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{
		State:    callerState,
		ThreadID: "thread-1",
	})
	require.NoError(t, err)
	collectBatches(t, batches, errs)

	assert.Equal(t, "original", callerState["x"])
}

func TestExecuteFlowMergesInputIntoInitialState(t *testing.T) {
	seen := make(chan map[string]any, 1)
	agent := newFlowAgent(t, func(_ context.Context, _ *flow.EventContext, f *testFlow) error {
		seen <- f.State()
		return nil
	})

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{
		State:    map[string]any{"topic": "go"},
		Messages: []message.Message{{ID: "m1", Role: "user", Content: "hi"}},
		ThreadID: "thread-1",
		Actions:  []Action{{Name: "save"}},
	})
	require.NoError(t, err)
	collectBatches(t, batches, errs)

	state := <-seen
	assert.Equal(t, "go", state["topic"])
	assert.Contains(t, state, "messages")
	assert.Contains(t, state, "copilotkit")
}

// fakeCrew returns a canned output.
type fakeCrew struct {
	inputs map[string]any
	raw    string
	err    error
}

func (c *fakeCrew) Kickoff(_ context.Context, inputs map[string]any) (flow.Output, error) {
	c.inputs = inputs
	return flow.Output{Raw: c.raw}, c.err
}

func TestExecuteCrew(t *testing.T) {
	crew := &fakeCrew{raw: "the summary"}
	agent, err := New("summarizer", func(o *Options) {
		o.Crew = func() flow.Crew { return crew }
	})
	require.NoError(t, err)

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{
		Messages: []message.Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "summarize the report"},
		},
	})
	require.NoError(t, err)

	collected := collectBatches(t, batches, errs)
	require.Len(t, collected, 1)
	require.Len(t, collected[0], 3)
	content := collected[0][1].(protocol.TextMessageContent)
	assert.Equal(t, "the summary", content.Content)

	// The leading system message is stripped; the last message drives the
	// crew's text input.
	assert.Equal(t, "summarize the report", crew.inputs["input"])
	history, ok := crew.inputs["crew_chat_messages"].(string)
	require.True(t, ok)
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(history), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "user", parsed[0]["role"])
}

func TestExecuteCrewPropagatesKickoffError(t *testing.T) {
	agent, err := New("summarizer", func(o *Options) {
		o.Crew = func() flow.Crew { return &fakeCrew{err: fmt.Errorf("kickoff failed")} }
	})
	require.NoError(t, err)

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{})
	require.NoError(t, err)

	var kickoffErr error
	for batches != nil || errs != nil {
		select {
		case _, ok := <-batches:
			if !ok {
				batches = nil
			}
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			kickoffErr = e
		case <-time.After(5 * time.Second):
			t.Fatal("timeout")
		}
	}
	require.EqualError(t, kickoffErr, "kickoff failed")
}

func TestNewRejectsAmbiguousMode(t *testing.T) {
	_, err := New("bad")
	assert.ErrorIs(t, err, ErrExecutionMode)

	_, err = New("bad", func(o *Options) {
		o.Flow = func() flow.Flow { return &nopFlow{} }
		o.Crew = func() flow.Crew { return &fakeCrew{} }
	})
	assert.ErrorIs(t, err, ErrExecutionMode)
}

func TestCrewInputKeyOverride(t *testing.T) {
	crew := &fakeCrew{raw: "ok"}
	agent, err := New("summarizer", func(o *Options) {
		o.Crew = func() flow.Crew { return crew }
		o.CrewInputKey = "question"
	})
	require.NoError(t, err)

	batches, errs, err := agent.Execute(context.Background(), ExecuteInput{
		Messages: []message.Message{{Role: "user", Content: "why?"}},
	})
	require.NoError(t, err)
	collectBatches(t, batches, errs)

	assert.Equal(t, "why?", crew.inputs["question"])
}
