package goGate

import "context"

type authContextKey struct{}
type clientIPContextKey struct{}

// WithAuthContext returns a copy of ctx carrying ac. The middleware calls it
// once per request after resolution; handlers read it back with
// [AuthContextFromContext].
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthContextFromContext returns the verdict attached to ctx. The boolean is
// false when the request never went through the resolver.
func AuthContextFromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{AuthStatus: StatusNone}, false
	}
	ac, ok := ctx.Value(authContextKey{}).(AuthContext)
	if !ok {
		return AuthContext{AuthStatus: StatusNone}, false
	}
	return ac, true
}

// WithClientIP attaches the caller's IP address to ctx. Login and signup
// throttling key on it when IP throttling is enabled.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
