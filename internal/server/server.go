// Package server wires the engine and cookie middleware into the gateway's
// HTTP routes.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/middleware"
)

const maxBodyBytes = 1 << 20

// Options configures optional routes and logging.
type Options struct {
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
	Logger  *slog.Logger
}

type server struct {
	engine *goGate.Engine
	logger *slog.Logger
}

// NewHandler returns the gateway's routes:
//
//	POST /auth/signup   create an account
//	POST /auth/login    issue a credential pair as cookies
//	POST /auth/logout   revoke the refresh record and clear cookies
//	GET  /me            the authenticated user id, or 401 with the status
//	GET  /healthz       Redis and directory reachability
//	GET  /metrics       engine counters, when Options.Metrics is set
func NewHandler(engine *goGate.Engine, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{engine: engine, logger: logger}
	auth := middleware.Authenticate(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("POST /auth/logout", auth(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /me", auth(middleware.RequireAuthenticated(http.HandlerFunc(s.handleMe))))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return logRequests(logger, mux)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type userResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type meResponse struct {
	UserID     string            `json:"userId"`
	AuthStatus goGate.AuthStatus `json:"authStatus"`
	Rotated    bool              `json:"rotated"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx := goGate.WithClientIP(r.Context(), middleware.ClientIP(r))
	res, err := s.engine.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	middleware.SetAuthCookies(w, s.engine.CookieConfig(), &res.Tokens)
	writeJSON(w, http.StatusOK, toUserResponse(res.User))
}

func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ctx := goGate.WithClientIP(r.Context(), middleware.ClientIP(r))
	res, err := s.engine.CreateAccount(ctx, goGate.CreateAccountRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	if res.Tokens != nil {
		middleware.SetAuthCookies(w, s.engine.CookieConfig(), res.Tokens)
	}
	writeJSON(w, http.StatusCreated, toUserResponse(res.User))
}

// handleLogout always clears the cookies. The refresh record is only
// revoked when the presented pair resolved to a user.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ac, _ := goGate.AuthContextFromContext(r.Context())
	if ac.Authenticated() {
		if err := s.engine.Logout(r.Context(), ac.UserID); err != nil {
			s.writeEngineError(w, r, err)
			return
		}
	}
	middleware.ClearAuthCookies(w, s.engine.CookieConfig())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	ac, _ := goGate.AuthContextFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		UserID:     ac.UserID,
		AuthStatus: ac.AuthStatus,
		Rotated:    ac.SetNewTokens,
	})
}

type healthResponse struct {
	Status           string `json:"status"`
	Redis            bool   `json:"redis"`
	RedisLatencyMS   int64  `json:"redisLatencyMs"`
	Directory        bool   `json:"directory"`
	DirectoryLatency int64  `json:"directoryLatencyMs"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.engine.Health(r.Context())
	body := healthResponse{
		Status:           "ok",
		Redis:            h.RedisAvailable,
		RedisLatencyMS:   h.RedisLatency.Milliseconds(),
		Directory:        h.DirectoryAvailable,
		DirectoryLatency: h.DirectoryLatency.Milliseconds(),
	}
	code := http.StatusOK
	if !h.Healthy() {
		body.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

func (s *server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusForError(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, code, msg)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, goGate.ErrLoginInvalid), errors.Is(err, goGate.ErrAccountCreationInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, goGate.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, goGate.ErrAccountSuspended):
		return http.StatusForbidden, "account suspended"
	case errors.Is(err, goGate.ErrAccountCreationDisabled):
		return http.StatusForbidden, "account creation disabled"
	case errors.Is(err, goGate.ErrAccountExists):
		return http.StatusConflict, "account already exists"
	case errors.Is(err, goGate.ErrLoginRateLimited), errors.Is(err, goGate.ErrAccountCreationRateLimited):
		return http.StatusTooManyRequests, "too many attempts"
	case errors.Is(err, goGate.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func toUserResponse(u goGate.UserRecord) userResponse {
	return userResponse{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
