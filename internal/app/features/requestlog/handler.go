// Package requestlog exposes the failed-request ledger to administrators.
package requestlog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	ledgerstore "github.com/clubvault/clubvault/internal/app/store/ledger"
	"github.com/clubvault/clubvault/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides failed-request ledger handlers.
type Handler struct {
	store  *ledgerstore.Store
	logger *zap.Logger
}

// NewHandler creates a new request log Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		store:  ledgerstore.New(db),
		logger: logger,
	}
}

// Routes returns the request log routes. The caller is expected to mount
// these behind admin authorization.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{requestID}", h.getByRequestID)
	return r
}

// list handles GET /api/request-log.
// Supports path (prefix), status (minimum code), since (RFC 3339), and
// limit query parameters.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ledgerstore.ListFilter{
		PathPrefix: q.Get("path"),
	}

	if v := q.Get("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 100 {
			jsonutil.BadRequest(w, "status must be an HTTP status code")
			return
		}
		filter.StatusCodeMin = n
	}

	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			jsonutil.BadRequest(w, "since must be RFC 3339")
			return
		}
		filter.Since = &t
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	entries, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("request log query failed", zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to query request log")
		return
	}
	if entries == nil {
		entries = []ledgerstore.Entry{}
	}

	jsonutil.OK(w, "Request log retrieved", entries)
}

// getByRequestID handles GET /api/request-log/{requestID}.
func (h *Handler) getByRequestID(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	entry, err := h.store.GetByRequestID(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "No ledger entry for that request id")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load ledger entry")
		return
	}

	jsonutil.OK(w, "Ledger entry retrieved", entry)
}
