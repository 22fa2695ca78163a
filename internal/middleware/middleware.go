package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"profile-service/internal/config"
	"profile-service/internal/core"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Middleware struct {
	app    *config.Application
	tokens core.TokenService
}

func New(app *config.Application, tokens core.TokenService) *Middleware {
	return &Middleware{app: app, tokens: tokens}
}

// --- RESPONSE WRITER for logging ---
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// --- REQUEST ID MIDDLEWARE ---
func (mw *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), config.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// --- LOGGING MIDDLEWARE ---

// Logging writes one access line per request at a level chosen by the status.
func (mw *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		mw.app.Logger.WithLevel(levelFor(rec.statusCode)).
			Str("request_id", getRequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.statusCode).
			Dur("duration", time.Since(start)).
			Str("ip", clientIP(r)).
			Int("response_size", rec.size).
			Msg("HTTP request processed")
	})
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// --- RECOVERY MIDDLEWARE ---

// Recovery turns a handler panic into a 500 with the generic error body.
func (mw *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := getRequestID(r.Context())
			mw.app.Logger.Error().
				Str("request_id", requestID).
				Str("route", r.Method+" "+r.URL.Path).
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Msg("Handler panicked")
			writeJSONError(w, http.StatusInternalServerError, "Server error", requestID)
		}()
		next.ServeHTTP(w, r)
	})
}

// --- AUTH MIDDLEWARE ---

// Auth accepts "Authorization: Bearer <token>" and falls back to the auth cookie.
// On success the user id is stored under config.UserIDKey.
func (mw *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())

		token := extractToken(r)
		if token == "" {
			mw.app.Logger.Warn().
				Str("request_id", requestID).
				Msg("Missing auth token")
			writeJSONError(w, http.StatusUnauthorized, "No token provided", requestID)
			return
		}

		userID, err := mw.tokens.Verify(token)
		if err != nil {
			mw.app.Logger.Warn().
				Str("request_id", requestID).
				Err(err).
				Msg("Token validation failed")
			writeJSONError(w, http.StatusUnauthorized, "Invalid token", requestID)
			return
		}

		ctx := context.WithValue(r.Context(), config.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	if cookie, err := r.Cookie(config.AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// --- SECURITY MIDDLEWARE ---

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
}

// apiCSP forbids everything except same-origin images, which covers served photos.
const apiCSP = "default-src 'none'; img-src 'self'; frame-ancestors 'none'"

func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		// The swagger UI bootstraps itself with inline scripts.
		if !strings.HasPrefix(r.URL.Path, "/swagger/") {
			h.Set("Content-Security-Policy", apiCSP)
		}
		next.ServeHTTP(w, r)
	})
}

// --- TIMEOUT MIDDLEWARE ---

// Timeout bounds the request context. Handlers and the store observe the
// deadline themselves, so the response is only ever written by one goroutine.
func (mw *Middleware) Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if ctx.Err() == context.DeadlineExceeded {
				mw.app.Logger.Warn().
					Str("request_id", getRequestID(ctx)).
					Dur("timeout", timeout).
					Msg("Request exceeded its deadline")
			}
		})
	}
}

// --- HELPER FUNCTIONS ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// clientIP prefers the first proxy hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSONError(w http.ResponseWriter, status int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    false,
		"message":    message,
		"request_id": requestID,
	})
}
