package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// Resolver is the part of [goGate.Engine] the middleware needs.
type Resolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string) (goGate.AuthContext, *goGate.TokenPair, error)
	CookieConfig() goGate.CookieConfig
}

// Authenticate resolves the credential cookies once per request and attaches
// the verdict to the request context before calling next. It never rejects a
// request for credential reasons; pair it with [RequireAuthenticated] on
// routes that need a signed-in user.
//
// On rotation both cookies are rewritten. A dependency failure ends the
// request with 503 and next is not called.
func Authenticate(engine Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			cfg := engine.CookieConfig()
			ctx := goGate.WithClientIP(r.Context(), ClientIP(r))

			ac, pair, err := engine.Resolve(ctx, cookieValue(r, cfg.AccessName), cookieValue(r, cfg.RefreshName))
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, goGate.ErrDependencyUnavailable) {
					status = http.StatusServiceUnavailable
				}
				http.Error(w, http.StatusText(status), status)
				return
			}

			if ac.SetNewTokens && pair != nil {
				SetAuthCookies(w, cfg, pair)
			}

			ctx = goGate.WithAuthContext(ctx, ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated answers 401 unless the request was resolved as
// AUTHENTICATED. The body carries the status and its diagnostic message.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, _ := goGate.AuthContextFromContext(r.Context())
		if !ac.Authenticated() {
			writeUnauthorized(w, ac)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type unauthorizedBody struct {
	AuthStatus goGate.AuthStatus `json:"authStatus"`
	Message    string            `json:"message"`
}

func writeUnauthorized(w http.ResponseWriter, ac goGate.AuthContext) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(unauthorizedBody{
		AuthStatus: ac.AuthStatus,
		Message:    ac.Message,
	})
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
