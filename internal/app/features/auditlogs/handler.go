// Package auditlogs exposes the audit trail to administrators.
package auditlogs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clubvault/clubvault/internal/app/store/audit"
	"github.com/clubvault/clubvault/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultLimit = 50

// Handler provides audit log query handlers.
type Handler struct {
	auditStore *audit.Store
	logger     *zap.Logger
}

// NewHandler creates a new audit logs Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		logger:     logger,
	}
}

// Routes returns the audit log routes. The caller is expected to mount
// these behind admin authorization.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

// list handles GET /api/audit-logs.
// Supports severity, actor (hex id), since (RFC 3339), limit, and offset
// query parameters.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.QueryFilter{
		Severity: q.Get("severity"),
		Limit:    defaultLimit,
	}

	if actor := q.Get("actor"); actor != "" {
		id, err := primitive.ObjectIDFromHex(actor)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid actor id")
			return
		}
		filter.ActorID = &id
	}

	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			jsonutil.BadRequest(w, "since must be RFC 3339")
			return
		}
		filter.StartTime = &t
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	entries, err := h.auditStore.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit log query failed", zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to query audit logs")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	jsonutil.OK(w, "Audit logs retrieved", entries)
}
