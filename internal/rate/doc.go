// Package rate provides the Redis-backed failed-login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - gl:<email> counts failed logins per email
//   - gli:<ip> counts failed logins per client IP
//
// # What this package must NOT do
//
//   - Decide what happens to a throttled caller (the login flow does).
//   - Be imported outside the goGate module.
package rate
