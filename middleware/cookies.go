package middleware

import (
	"net/http"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

// SetAuthCookies writes both credential cookies for pair. Max-Age follows the
// credential lifetimes so the browser drops a cookie when its token expires.
func SetAuthCookies(w http.ResponseWriter, cfg goGate.CookieConfig, pair *goGate.TokenPair) {
	if pair == nil {
		return
	}
	http.SetCookie(w, authCookie(cfg, cfg.AccessName, pair.AccessToken, pair.AccessTTL))
	http.SetCookie(w, authCookie(cfg, cfg.RefreshName, pair.RefreshToken, pair.RefreshTTL))
}

// ClearAuthCookies expires both credential cookies.
func ClearAuthCookies(w http.ResponseWriter, cfg goGate.CookieConfig) {
	for _, name := range []string{cfg.AccessName, cfg.RefreshName} {
		c := authCookie(cfg, name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func authCookie(cfg goGate.CookieConfig, name, value string, ttl time.Duration) *http.Cookie {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   cfg.Domain,
		MaxAge:   int(ttl / time.Second),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	}
}
