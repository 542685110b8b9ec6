// internal/app/system/ledger/middleware.go

// Package ledger records failed API requests to MongoDB so integration
// problems can be debugged after the fact.
package ledger

import (
	"context"
	"net/http"
	"strings"
	"time"

	ledgerstore "github.com/clubvault/clubvault/internal/app/store/ledger"
	"github.com/clubvault/clubvault/internal/app/system/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds configuration for the ledger middleware.
type Config struct {
	Store  *ledgerstore.Store
	Logger *zap.Logger

	// ExcludePaths is a list of path prefixes never recorded.
	ExcludePaths []string
}

// Middleware returns HTTP middleware that records requests which end in a
// 4xx/5xx status. The write happens off the request goroutine; a ledger
// failure never affects the response.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			if wrapped.status < 400 {
				return
			}

			// Prefer the request id assigned upstream so ledger entries can
			// be correlated with request logs.
			requestID := chimw.GetReqID(r.Context())
			if requestID == "" {
				requestID = uuid.New().String()
			}

			entry := ledgerstore.Entry{
				RequestID:  requestID,
				Method:     r.Method,
				Path:       path,
				Query:      r.URL.RawQuery,
				RemoteIP:   clientIP(r),
				StatusCode: wrapped.status,
				DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
				ErrorClass: classify(wrapped.status),
			}
			if user, ok := auth.CurrentUser(r); ok {
				entry.ActorID = user.UserID.Hex()
				entry.ActorName = user.Name
				entry.ActorRole = user.Role
			}

			go func() {
				storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := cfg.Store.Create(storeCtx, entry); err != nil {
					cfg.Logger.Error("failed to store ledger entry",
						zap.String("request_id", entry.RequestID),
						zap.Error(err))
				}
			}()
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func classify(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "validation"
	case status == http.StatusUnauthorized:
		return "auth"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status >= 500:
		return "internal"
	default:
		return "client_error"
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
