// Package flow defines the contract between the relay and the agent
// orchestration framework it bridges: the Flow and Crew interfaces, the
// internal lifecycle event vocabulary a running flow produces, the
// unbounded hand-off queue those events travel through, and the worker
// entry point that executes a flow while reporting its lifecycle.
//
// The relay treats a Flow as a black box: it owns a mutable state document
// and, while Kickoff runs, emits lifecycle events through an EventContext.
// How the framework schedules steps internally is of no concern here.
package flow
