package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// SessionResolver maps a session token to its owner.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (shared.Username, error)
}

// ErrorWriter renders an error response. The server passes its envelope writer.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// BearerAuth authenticates requests with an "Authorization: Bearer <token>" header.
type BearerAuth struct {
	sessions SessionResolver
	onError  ErrorWriter
}

// NewBearerAuth creates a new bearer authenticator.
func NewBearerAuth(sessions SessionResolver, onError ErrorWriter) *BearerAuth {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, `{"success":false,"error":{"code":"unauthorized","message":"authentication required"}}`, http.StatusUnauthorized)
		}
	}
	return &BearerAuth{sessions: sessions, onError: onError}
}

// Middleware rejects requests without a live session and stores the
// username in the request context.
func (a *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			a.onError(w, r, shared.ErrSessionNotFound)
			return
		}

		username, err := a.sessions.Resolve(r.Context(), token)
		if err != nil {
			a.onError(w, r, err)
			return
		}

		ctx := WithUsername(r.Context(), username)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(logger.Username(username.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// RequestLogger logs every request and puts a request-scoped logger into the context.
// It expects chi's RequestID middleware to run first.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			reqLog := log.WithRequestID(reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.Info("http request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Latency(time.Since(start)),
				logger.String("ip", r.RemoteAddr),
			)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CONTROL MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// NoCacheMiddleware prevents caching of personal data.
func NoCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SECURITY HEADERS MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// SecurityHeadersMiddleware adds security-related headers.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST SIZE LIMIT MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// RequestSizeLimitMiddleware limits the size of request bodies.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, `{"success":false,"error":{"code":"payload_too_large","message":"Request body too large"}}`,
					http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyUsername contextKey = "username"

// WithUsername stores the authenticated user in ctx.
func WithUsername(ctx context.Context, username shared.Username) context.Context {
	return context.WithValue(ctx, contextKeyUsername, username)
}

// UsernameFrom returns the authenticated user, if any.
func UsernameFrom(ctx context.Context) (shared.Username, bool) {
	u, ok := ctx.Value(contextKeyUsername).(shared.Username)
	return u, ok && u != ""
}
