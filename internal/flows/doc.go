// Package flows contains the dependency-injected orchestrators behind each
// Engine operation: RunResolve, RunLogin, RunCreateAccount and RunLogout.
//
// Each flow accepts a typed dependency struct and reports a result kind the
// Engine maps to public statuses, errors, metrics and audit events.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGate (to avoid import cycles).
//   - Emit metrics or audit events; the Engine does that from the result kind.
package flows
