// Package internal holds code private to the goGate module.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - config: process settings for cmd/ binaries, loaded with Viper
//   - flows: dependency-injected orchestrators for every Engine operation
//   - limiters: signup attempt throttle
//   - rate: failed-login throttle
//   - server: the gateway's HTTP routes
package internal
