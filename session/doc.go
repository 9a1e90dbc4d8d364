// Package session provides the Redis-backed refresh record store.
//
// Each user has at most one record, keyed prefix:userID, whose value is the single
// refresh token currently allowed to rotate. Set and Delete are last-write-wins.
// [Store.Rotate] is a compare-and-swap that deletes the record when the comparison
// fails, which closes the get/compare/set race between concurrent refreshes.
//
// # What this package must NOT do
//
//   - Import goGate or jwt (no upward imports).
//   - Interpret token contents or decide authentication status.
package session
