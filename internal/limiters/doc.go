// Package limiters provides domain-specific rate limiters built on Redis
// fixed-window counters.
//
// # Limiters
//
//   - [AccountCreationLimiter]: per-email and per-IP throttle for sign-ups.
//
// Limiters are nil-safe: calling Enforce on a nil receiver returns nil.
//
// # What this package must NOT do
//
//   - Import goGate or any sibling internal package.
//   - Make policy decisions beyond counting; flow functions decide consequences.
package limiters
