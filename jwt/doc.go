// Package jwt issues and verifies the access/refresh credential pair.
//
// Both credentials are HS256 tokens carrying sub, iat, exp and a random jti. They are
// signed with distinct secrets so one can never stand in for the other.
//
// # Pairing
//
// An access credential's subject is the user id. A refresh credential's subject is
// the exact access token string it was minted with, which ties each refresh token
// to one access token instance rather than to the account.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Decide authentication status (that belongs to the engine's resolver).
//   - Read secrets from the environment; they arrive through [Config].
package jwt
