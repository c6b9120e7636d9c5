// Package protocol defines the canonical outgoing event types consumed by
// the frontend runtime, plus helpers for grouping events into batches and
// encoding them as JSON lines.
//
// The protocol is a discriminated union over text message streaming
// (start/content/end), action execution streaming (start/args/end) and
// agent state snapshots. Every event carries the identifiers the consumer
// needs to correlate sequences (message id, action execution id, thread,
// run and agent). Transport framing beyond JSON lines is the caller's
// responsibility.
package protocol
