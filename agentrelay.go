// Package agentrelay bridges flow/crew style agent execution to the event
// protocol consumed by a frontend chat runtime. An Agent wraps either a
// Flow factory or a Crew factory and, per run, translates the internal
// lifecycle events the execution produces into ordered batches of protocol
// events (text message streaming, action execution streaming, agent state
// snapshots).
//
// While a tool call streams its arguments, the bridge incrementally
// reconstructs a best-effort preview of the eventual state from the
// partial JSON received so far, so the frontend can render structured
// output live instead of waiting for the call to finish.
//
// Typical usage:
//
//	agent, err := agentrelay.New("researcher", func(o *agentrelay.Options) {
//	    o.Flow = func() flow.Flow { return NewResearchFlow() }
//	})
//	batches, errs, err := agent.Execute(ctx, agentrelay.ExecuteInput{
//	    State:    map[string]any{},
//	    Messages: messages,
//	    ThreadID: threadID,
//	})
//	for batch := range batches {
//	    lines, _ := batch.EncodeJSONLines()
//	    // forward lines to the frontend
//	}
package agentrelay

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/message"
	"github.com/hupe1980/agentrelay/partialjson"
	"github.com/hupe1980/agentrelay/protocol"
)

var (
	// ErrExecutionMode is returned when neither or both of the two
	// mutually exclusive execution modes (crew, flow) are configured.
	ErrExecutionMode = fmt.Errorf("exactly one of a crew or a flow factory must be provided")

	// ErrThreadIDRequired is returned when a flow run is started without a
	// thread id; the consumer needs it to correlate state snapshots.
	ErrThreadIDRequired = fmt.Errorf("thread id is required for flow execution")
)

// Action describes one frontend action made available to the agent.
type Action struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Options configures an Agent.
type Options struct {
	// Description is the agent's human readable description.
	Description string
	// Flow produces a fresh flow instance per run. Mutually exclusive
	// with Crew.
	Flow func() flow.Flow
	// Crew produces a fresh crew instance per run. Mutually exclusive
	// with Flow.
	Crew func() flow.Crew
	// CrewInputKey is the input document key the crew reads its text
	// input from. Defaults to "input".
	CrewInputKey string
	// MergeState overrides how the caller-supplied state, messages and
	// actions are merged into the flow's initial state.
	MergeState MergeStateFunc
	// Logger receives run diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent bridges one flow or crew to the frontend runtime protocol. Public
// methods are safe for concurrent use; every run gets its own execution
// state.
type Agent struct {
	name         string
	description  string
	newFlow      func() flow.Flow
	newCrew      func() flow.Crew
	crewInputKey string
	mergeState   MergeStateFunc
	logger       logging.Logger
	parser       *partialjson.Parser
}

// New constructs an Agent. Exactly one of Options.Flow or Options.Crew
// must be set.
func New(name string, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		CrewInputKey: "input",
		MergeState:   DefaultMergeState,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if (opts.Flow == nil) == (opts.Crew == nil) {
		return nil, ErrExecutionMode
	}

	return &Agent{
		name:         name,
		description:  opts.Description,
		newFlow:      opts.Flow,
		newCrew:      opts.Crew,
		crewInputKey: opts.CrewInputKey,
		mergeState:   opts.MergeState,
		logger:       opts.Logger,
		parser:       partialjson.NewParser(),
	}, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// ExecuteInput is the per-run input supplied by the invoking runtime.
type ExecuteInput struct {
	// State is the caller's state document. It is never mutated by the
	// run.
	State map[string]any
	// Messages is the prior conversation.
	Messages []message.Message
	// ThreadID correlates the run with a conversation thread. Required
	// for flow execution.
	ThreadID string
	// Actions lists the frontend actions available to the agent.
	Actions []Action
}

// Execute starts a run and returns the batch and error channels. Batches
// arrive in the exact order the underlying execution produced its events;
// both channels are closed when the run ends. Only configuration errors
// are returned synchronously.
func (a *Agent) Execute(ctx context.Context, input ExecuteInput) (<-chan protocol.EventBatch, <-chan error, error) {
	if a.newCrew != nil {
		return a.executeCrew(ctx, input)
	}
	return a.executeFlow(ctx, input)
}
