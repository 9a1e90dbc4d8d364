// Package goGate authenticates requests from a pair of cookies: a short-lived
// access token and a long-lived refresh token paired to it.
//
// Every request is classified into exactly one [AuthStatus]. When the access
// token has expired but the refresh token is valid, paired, and still the one
// on record for the user, [Engine.Resolve] mints a new pair and stores the new
// refresh token in place of the old one. Presenting a refresh token that is no
// longer on record revokes the user's record, forcing a fresh login on every
// holder of the pair.
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types ([AuthContext], [TokenPair], [UserRecord]). Flow orchestration,
// login throttling, and audit dispatch live under internal/. Token signing is
// in the jwt package, the refresh record in session, password hashing in
// password, and HTTP cookie handling in middleware.
//
// # Errors
//
// Credential problems are statuses, never errors. Engine methods return an
// error matching [ErrDependencyUnavailable] when Redis, the user directory, or
// signing fails, and callers should answer those with a 5xx.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build].
package goGate
