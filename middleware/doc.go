// Package middleware adapts goGate.Engine to net/http.
//
// # Handlers
//
//   - [Authenticate] reads the access and refresh cookies, resolves them,
//     rewrites both cookies on rotation, and attaches the goGate.AuthContext
//     to the request context.
//   - [RequireAuthenticated] answers 401 unless the attached status is
//     AUTHENTICATED.
//   - [SetAuthCookies] and [ClearAuthCookies] write the cookie pair for login
//     and logout handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does not parse
// tokens or talk to Redis; every classification comes from Engine.Resolve.
package middleware
