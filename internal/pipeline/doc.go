// Package pipeline runs the two user actions, transcribing a video and
// answering a question about it, against a named session.
//
// Both surfaces (terminal shell and browser UI) drive the same Pipeline, so
// logging, metrics, and error classification are identical regardless of
// where an action came from. Each action gets a fresh correlation ID and
// every stage is stamped onto the context before it runs.
package pipeline
