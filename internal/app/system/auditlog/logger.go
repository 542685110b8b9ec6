// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/clubvault/clubvault/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Mode controls where audit entries go.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Mode string
}

// Logger records audit entries for folder/document mutations.
// It logs to MongoDB (via audit.Store) and structured logs (via zap).
// Audit logging is fire-and-forget: a storage failure is logged and
// swallowed so it never aborts the primary operation.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Action describes one audited action.
type Action struct {
	Title       string
	Description string
	Severity    string // audit.SeverityInfo if empty
	ActorID     primitive.ObjectID
	Meta        map[string]string
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(entry audit.Entry) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("title", entry.Title),
		zap.String("severity", entry.Severity),
		zap.String("ip", entry.IP),
	}
	if entry.ActorID != nil {
		fields = append(fields, zap.String("actor_id", entry.ActorID.Hex()))
	}
	for k, v := range entry.Meta {
		fields = append(fields, zap.String("meta_"+k, v))
	}

	switch entry.Severity {
	case audit.SeverityCritical, audit.SeverityWarning:
		l.zapLog.Warn(entry.Description, fields...)
	default:
		l.zapLog.Info(entry.Description, fields...)
	}
}

// LogAction records an audited action.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// The request may be nil when the action has no HTTP context.
func (l *Logger) LogAction(ctx context.Context, r *http.Request, action Action) {
	if l == nil {
		return
	}
	if l.config.Mode == "off" {
		return
	}

	entry := audit.Entry{
		Title:       action.Title,
		Description: action.Description,
		Severity:    action.Severity,
		Meta:        action.Meta,
	}
	if entry.Severity == "" {
		entry.Severity = audit.SeverityInfo
	}
	if !action.ActorID.IsZero() {
		entry.ActorID = &action.ActorID
	}
	if r != nil {
		entry.IP = getClientIP(r)
	}

	if l.config.Mode == "all" || l.config.Mode == "log" {
		l.logToZap(entry)
	}

	if l.config.Mode == "all" || l.config.Mode == "db" {
		if err := l.store.Log(ctx, entry); err != nil {
			l.zapLog.Error("failed to store audit entry",
				zap.Error(err),
				zap.String("title", action.Title),
			)
		}
	}
}
