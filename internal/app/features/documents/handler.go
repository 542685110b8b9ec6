// Package documents provides the document management API.
//
// Document records point at their owning folder by name while the folder
// keeps an id membership array; every mutation here performs the matching
// membership write so the two stay in agreement.
package documents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/clubvault/clubvault/internal/app/store/archive"
	"github.com/clubvault/clubvault/internal/app/store/audit"
	"github.com/clubvault/clubvault/internal/app/store/document"
	"github.com/clubvault/clubvault/internal/app/store/folder"
	"github.com/clubvault/clubvault/internal/app/store/storeutil"
	"github.com/clubvault/clubvault/internal/app/system/assets"
	"github.com/clubvault/clubvault/internal/app/system/auditlog"
	"github.com/clubvault/clubvault/internal/app/system/authz"
	"github.com/clubvault/clubvault/internal/app/system/htmlsanitize"
	"github.com/clubvault/clubvault/internal/app/system/jsonutil"
	"github.com/clubvault/clubvault/internal/app/system/normalize"
	"github.com/clubvault/clubvault/internal/app/system/txn"
	"github.com/clubvault/clubvault/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler provides document management handlers.
type Handler struct {
	db           *mongo.Database
	docStore     *document.Store
	folderStore  *folder.Store
	assetDeleter *assets.Deleter
	archiveStore *archive.Store
	auditLogger  *auditlog.Logger
	logger       *zap.Logger
}

// NewHandler creates a new documents Handler.
func NewHandler(
	db *mongo.Database,
	assetDeleter *assets.Deleter,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		db:           db,
		docStore:     document.New(db),
		folderStore:  folder.New(db),
		assetDeleter: assetDeleter,
		archiveStore: archive.New(db),
		auditLogger:  auditLogger,
		logger:       logger,
	}
}

// Validate checks a document create payload.
func (req CreateRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Folder, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Size, validation.Min(int64(0))),
	)
}

// list handles GET /api/documents.
// Supports q (substring search), folder (exact), tags (comma separated),
// page, and limit query parameters.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	limit, page = storeutil.Clamp(limit, page)

	opts := document.SearchOptions{
		Query:  normalize.QueryParam(q.Get("q")),
		Folder: normalize.QueryParam(q.Get("folder")),
		Tags:   normalize.Tags(splitCSV(q.Get("tags"))),
		Page:   page,
		Limit:  limit,
	}

	docs, total, err := h.docStore.Search(r.Context(), opts)
	if err != nil {
		h.logger.Error("document search failed", zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to list documents")
		return
	}

	jsonutil.OKPaged(w, "Documents retrieved", docs, jsonutil.NewPagination(page, limit, total))
}

// get handles GET /api/documents/{id}.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid document id")
		return
	}

	doc, err := h.docStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Document not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to fetch document")
		return
	}

	jsonutil.OK(w, "Document retrieved", doc)
}

// create handles POST /api/documents.
// After inserting the record the target folder is upserted by name, so
// filing a document into an unknown folder name brings the folder into
// existence with the document as its first member.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	req.Name = normalize.Name(req.Name)
	req.Folder = normalize.Name(req.Folder)
	if err := req.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	// Insert and folder upsert run as one logical operation; where the
	// deployment lacks transaction support this degrades to sequential
	// writes with the insert landing first.
	actorID := authz.ActorID(r)
	var doc *models.Document
	err := txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		var createErr error
		doc, createErr = h.docStore.Create(ctx, document.CreateInput{
			Name:             req.Name,
			OriginalFilename: req.OriginalFilename,
			Format:           req.Format,
			Description:      htmlsanitize.Plain(req.Description),
			Tags:             normalize.Tags(req.Tags),
			Folder:           req.Folder,
			PublicID:         req.PublicID,
			Size:             req.Size,
			CreatedByID:      actorID,
		})
		if createErr != nil {
			return createErr
		}
		_, addErr := h.folderStore.AddDocument(ctx, req.Folder, doc.ID, actorID)
		return addErr
	})
	if err != nil {
		h.logger.Error("failed to create document",
			zap.String("folder", req.Folder),
			zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to create document")
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Document created",
		Description: fmt.Sprintf("Document %q filed into folder %q", doc.Name, doc.Folder),
		ActorID:     actorID,
		Meta:        map[string]string{"document_id": doc.ID.Hex(), "folder": doc.Folder},
	})

	jsonutil.Created(w, "Document created", doc)
}

// update handles PUT /api/documents/{id}.
// A folder change pulls the id out of every folder currently listing it,
// then upserts it into the destination folder. The pull is deliberately not
// scoped to one folder; stale memberships elsewhere get cleaned up too.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid document id")
		return
	}

	original, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Document not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load document")
		return
	}

	var req UpdateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	actorID := authz.ActorID(r)
	input := document.UpdateInput{
		OriginalFilename: req.OriginalFilename,
		Format:           req.Format,
		Tags:             normalize.Tags(req.Tags),
		UpdatedByID:      actorID,
	}
	if req.Name != nil {
		name := normalize.Name(*req.Name)
		if name == "" {
			jsonutil.BadRequest(w, "Document name cannot be empty")
			return
		}
		input.Name = &name
	}
	if req.Description != nil {
		desc := htmlsanitize.Plain(*req.Description)
		input.Description = &desc
	}

	var newFolder string
	if req.Folder != nil {
		newFolder = normalize.Name(*req.Folder)
		if newFolder == "" {
			jsonutil.BadRequest(w, "Folder name cannot be empty")
			return
		}
		input.Folder = &newFolder
	}

	// A folder change re-syncs membership in the same logical operation as
	// the field update, transactionally where supported.
	moving := input.Folder != nil && newFolder != original.Folder
	if err := txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		if err := h.docStore.Update(ctx, id, input); err != nil {
			return err
		}
		if !moving {
			return nil
		}
		return h.syncMembership(ctx, id, newFolder, actorID)
	}); err != nil {
		h.logger.Error("failed to update document",
			zap.String("document_id", id.Hex()),
			zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to update document")
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Document updated",
		Description: fmt.Sprintf("Document %q updated", original.Name),
		ActorID:     actorID,
		Meta:        map[string]string{"document_id": id.Hex()},
	})

	updated, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.InternalError(w, err, "Document updated but could not be reloaded")
		return
	}
	jsonutil.OK(w, "Document updated", updated)
}

// syncMembership moves a document id from wherever it is currently listed
// into the named destination folder, creating the folder if needed.
func (h *Handler) syncMembership(ctx context.Context, docID primitive.ObjectID, dest string, actorID primitive.ObjectID) error {
	if err := h.folderStore.PullDocument(ctx, docID); err != nil {
		return fmt.Errorf("pulling document from folders: %w", err)
	}
	if _, err := h.folderStore.AddDocument(ctx, dest, docID, actorID); err != nil {
		return fmt.Errorf("adding document to folder %q: %w", dest, err)
	}
	return nil
}

// deleteOne handles DELETE /api/documents/{id}.
// The remote asset is removed before the local record so a crash between
// the two leaves an orphaned remote asset at worst, never a local record
// pointing at a missing asset.
func (h *Handler) deleteOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid document id")
		return
	}

	doc, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Document not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load document")
		return
	}

	if err := h.removeDocument(ctx, doc, archive.ReasonDocumentDelete); err != nil {
		h.logger.Error("document delete failed",
			zap.String("document_id", id.Hex()),
			zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to delete document")
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Document deleted",
		Description: fmt.Sprintf("Document %q deleted from folder %q", doc.Name, doc.Folder),
		Severity:    audit.SeverityWarning,
		ActorID:     authz.ActorID(r),
		Meta:        map[string]string{"document_id": id.Hex(), "folder": doc.Folder},
	})

	jsonutil.OK(w, "Document deleted", map[string]string{"id": id.Hex()})
}

// removeDocument archives, deletes the remote asset, deletes the record,
// and pulls the id from every folder listing it.
func (h *Handler) removeDocument(ctx context.Context, doc *models.Document, reason string) error {
	if err := h.archiveStore.Save(ctx, archive.SaveInput{
		Data:             doc,
		OriginalID:       doc.ID,
		SourceCollection: "documents",
		Reason:           reason,
	}); err != nil {
		h.logger.Warn("failed to archive document snapshot",
			zap.String("document_id", doc.ID.Hex()),
			zap.Error(err))
	}

	if doc.HasAsset() {
		if err := h.assetDeleter.Delete(ctx, []string{doc.PublicID}); err != nil {
			return fmt.Errorf("deleting remote asset: %w", err)
		}
	}

	return txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		if err := h.docStore.Delete(ctx, doc.ID); err != nil {
			return fmt.Errorf("deleting document record: %w", err)
		}
		if err := h.folderStore.PullDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("pulling document from folders: %w", err)
		}
		return nil
	})
}

// bulkDelete handles DELETE /api/documents.
// Best-effort: one document's failure is captured and the batch continues.
func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BulkDeleteRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if len(req.DocumentIDs) == 0 {
		jsonutil.BadRequest(w, "documentIds must not be empty")
		return
	}

	result := BulkDeleteResult{
		BatchID: uuid.New().String(),
		Deleted: []string{},
		Failed:  []BulkDeleteFailure{},
	}

	for _, idStr := range req.DocumentIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: idStr, Error: "invalid document id"})
			continue
		}

		doc, err := h.docStore.GetByID(ctx, id)
		if err != nil {
			msg := "document not found"
			if !errors.Is(err, mongo.ErrNoDocuments) {
				msg = jsonutil.ErrorMessage(err, "load failed")
			}
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: idStr, Error: msg})
			continue
		}

		if err := h.removeDocument(ctx, doc, archive.ReasonDocumentBulkDelete); err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{
				ID:    idStr,
				Error: jsonutil.ErrorMessage(err, "delete failed"),
			})
			continue
		}
		result.Deleted = append(result.Deleted, idStr)
	}

	severity := audit.SeverityCritical
	if len(result.Failed) > 0 {
		severity = audit.SeverityWarning
	}
	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title: "Documents bulk deleted",
		Description: fmt.Sprintf("Bulk document delete: %d succeeded, %d failed",
			len(result.Deleted), len(result.Failed)),
		Severity: severity,
		ActorID:  authz.ActorID(r),
		Meta: map[string]string{
			"batch_id":  result.BatchID,
			"requested": strconv.Itoa(len(req.DocumentIDs)),
		},
	})

	jsonutil.OK(w, "Bulk document delete processed", result)
}

// splitCSV splits a comma separated query value into trimmed parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
