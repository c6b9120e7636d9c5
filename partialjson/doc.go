// Package partialjson implements a tolerant JSON parser for streaming input.
//
// Tool call arguments arrive as a stream of text fragments; at any point the
// accumulated buffer may end in the middle of a token. Parse extracts the
// most complete value deserializable from the well-formed leading portion:
// complete object members are kept, a member whose value was cut off
// mid-string is dropped, and a member whose value is a partially received
// container keeps the partial container. Parse never panics on malformed
// input.
package partialjson
