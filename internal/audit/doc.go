// Package audit implements async event dispatching for security-relevant operations.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay, drop-if-full or block-if-full.
//   - [Event]: one audit record (time, type, user, IP, auth status, metadata).
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Engine does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goGate or any sibling internal package.
package audit
