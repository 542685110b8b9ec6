// Package folders provides the folder management API.
//
// Folders own a membership array of document ids while every document carries
// its owning folder's name; the handlers here are responsible for keeping the
// two sides in agreement across create, rename, and delete.
package folders

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

// errDefaultFolder marks an attempt to delete the system default folder.
var errDefaultFolder = errors.New("the default folder cannot be deleted")

// Handler provides folder management handlers.
type Handler struct {
	db           *mongo.Database
	folderStore  *folder.Store
	docStore     *document.Store
	assetDeleter *assets.Deleter
	archiveStore *archive.Store
	auditLogger  *auditlog.Logger
	logger       *zap.Logger
}

// NewHandler creates a new folders Handler.
func NewHandler(
	db *mongo.Database,
	assetDeleter *assets.Deleter,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		db:           db,
		folderStore:  folder.New(db),
		docStore:     document.New(db),
		assetDeleter: assetDeleter,
		archiveStore: archive.New(db),
		auditLogger:  auditLogger,
		logger:       logger,
	}
}

// Validate checks a folder create payload.
func (req CreateRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
	)
}

// list handles GET /api/folders.
// Returns every folder with its live document count plus a total rollup.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folderList, err := h.folderStore.List(ctx)
	if err != nil {
		h.logger.Error("failed to list folders", zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to list folders")
		return
	}

	summaries := make([]Summary, 0, len(folderList))
	var totalDocs int64
	for _, f := range folderList {
		count, err := h.docStore.CountByFolder(ctx, f.Name)
		if err != nil {
			h.logger.Warn("failed to count folder documents",
				zap.String("folder", f.Name),
				zap.Error(err))
		}
		totalDocs += count
		summaries = append(summaries, Summary{Folder: f, DocumentCount: count})
	}

	jsonutil.OK(w, "Folders retrieved", ListData{
		Folders:        summaries,
		TotalDocuments: totalDocs,
	})
}

// getByName handles GET /api/folders/{name}.
func (h *Handler) getByName(w http.ResponseWriter, r *http.Request) {
	name := normalize.Name(chi.URLParam(r, "folder"))

	f, err := h.folderStore.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Folder not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to fetch folder")
		return
	}

	jsonutil.OK(w, "Folder retrieved", f)
}

// create handles POST /api/folders.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	req.Name = normalize.Name(req.Name)
	if err := req.Validate(); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	// Pre-check for a friendly conflict message; the unique index on name_ci
	// still catches the race if two creates pass this check together.
	exists, err := h.folderStore.NameExists(ctx, req.Name, nil)
	if err != nil {
		jsonutil.InternalError(w, err, "Failed to check folder name")
		return
	}
	if exists {
		jsonutil.Conflict(w, fmt.Sprintf("A folder named %q already exists", req.Name))
		return
	}

	var parentID *primitive.ObjectID
	if req.Parent != "" {
		parent, err := h.folderStore.GetByName(ctx, normalize.Name(req.Parent))
		if err != nil {
			jsonutil.BadRequest(w, "Parent folder does not exist")
			return
		}
		parentID = &parent.ID
	}

	created, err := h.folderStore.Create(ctx, folder.CreateInput{
		Name:        req.Name,
		Description: htmlsanitize.Plain(req.Description),
		ParentID:    parentID,
		CreatedByID: authz.ActorID(r),
	})
	if err != nil {
		if errors.Is(err, folder.ErrDuplicateName) {
			jsonutil.Conflict(w, fmt.Sprintf("A folder named %q already exists", req.Name))
			return
		}
		h.logger.Error("failed to create folder", zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to create folder")
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Folder created",
		Description: fmt.Sprintf("Folder %q created", created.Name),
		ActorID:     authz.ActorID(r),
		Meta:        map[string]string{"folder_id": created.ID.Hex(), "name": created.Name},
	})

	jsonutil.Created(w, "Folder created", created)
}

// update handles PUT /api/folders/{id}.
//
// The folder is loaded first so the original name/description/isDefault can
// be diffed for the audit entry. When the name changes, every document the
// folder's membership array owns is re-pointed to the new name in the same
// logical operation.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	h.applyUpdate(w, r, false)
}

// patch handles PATCH /api/folders/{id}.
//
// Same rename-cascade rule as update, but absent fields are left untouched
// and the cascade selects documents by the old folder name rather than by
// the membership array, so documents the array has lost track of still get
// re-pointed.
func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	h.applyUpdate(w, r, true)
}

func (h *Handler) applyUpdate(w http.ResponseWriter, r *http.Request, byOldName bool) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "folder"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid folder id")
		return
	}

	original, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Folder not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load folder")
		return
	}

	var req UpdateRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	input := folder.UpdateInput{UpdatedByID: authz.ActorID(r)}
	if req.Name != nil {
		name := normalize.Name(*req.Name)
		if name == "" {
			jsonutil.BadRequest(w, "Folder name cannot be empty")
			return
		}
		input.Name = &name
	}
	if req.Description != nil {
		desc := htmlsanitize.Plain(*req.Description)
		input.Description = &desc
	}
	input.IsDefault = req.IsDefault

	if input.Name != nil && *input.Name != original.Name {
		exists, err := h.folderStore.NameExists(ctx, *input.Name, &id)
		if err != nil {
			jsonutil.InternalError(w, err, "Failed to check folder name")
			return
		}
		if exists {
			jsonutil.Conflict(w, fmt.Sprintf("A folder named %q already exists", *input.Name))
			return
		}

		// Renames change the join key between folders and documents; keep a
		// snapshot of the pre-rename state for recovery.
		if err := h.archiveStore.Save(ctx, archive.SaveInput{
			Data:             original,
			OriginalID:       original.ID,
			SourceCollection: "folders",
			Reason:           archive.ReasonFolderRename,
		}); err != nil {
			h.logger.Warn("failed to archive pre-rename snapshot",
				zap.String("folder_id", id.Hex()),
				zap.Error(err))
		}
	}

	renaming := input.Name != nil && *input.Name != original.Name

	// The folder update and the rename cascade are one logical operation:
	// until the cascade runs, documents still point at the old name. Run
	// both inside a transaction where the deployment supports one; on
	// standalone servers this degrades to sequential writes and a failure
	// between them leaves the stores disagreeing until a corrective write.
	var repointed int64
	err = txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		if err := h.folderStore.Update(ctx, id, input); err != nil {
			return err
		}
		if !renaming {
			return nil
		}
		var cascadeErr error
		if byOldName {
			repointed, cascadeErr = h.docStore.RepointFolderByName(ctx, original.Name, *input.Name)
		} else {
			repointed, cascadeErr = h.docStore.RepointFolderByIDs(ctx, original.Documents, *input.Name)
		}
		return cascadeErr
	})
	if err != nil {
		if errors.Is(err, folder.ErrDuplicateName) {
			jsonutil.Conflict(w, fmt.Sprintf("A folder named %q already exists", *input.Name))
			return
		}
		h.logger.Error("failed to update folder",
			zap.String("folder_id", id.Hex()),
			zap.Error(err))
		jsonutil.InternalError(w, err, "Failed to update folder")
		return
	}
	if renaming {
		h.logger.Info("folder renamed",
			zap.String("folder_id", id.Hex()),
			zap.String("old_name", original.Name),
			zap.String("new_name", *input.Name),
			zap.Int64("documents_repointed", repointed))
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Folder updated",
		Description: describeChanges(original, input),
		ActorID:     authz.ActorID(r),
		Meta:        map[string]string{"folder_id": id.Hex()},
	})

	updated, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		jsonutil.InternalError(w, err, "Folder updated but could not be reloaded")
		return
	}
	jsonutil.OK(w, "Folder updated", updated)
}

// describeChanges renders exactly which of name/description/isDefault changed
// as from -> to pairs for the audit entry.
func describeChanges(original *models.Folder, input folder.UpdateInput) string {
	var parts []string
	if input.Name != nil && *input.Name != original.Name {
		parts = append(parts, fmt.Sprintf("name: %q -> %q", original.Name, *input.Name))
	}
	if input.Description != nil && *input.Description != original.Description {
		parts = append(parts, fmt.Sprintf("description: %q -> %q", original.Description, *input.Description))
	}
	if input.IsDefault != nil && *input.IsDefault != original.IsDefault {
		parts = append(parts, fmt.Sprintf("isDefault: %t -> %t", original.IsDefault, *input.IsDefault))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Folder %q updated (no field changes)", original.Name)
	}
	return fmt.Sprintf("Folder %q updated: %s", original.Name, strings.Join(parts, ", "))
}

// deleteEmpty handles DELETE /api/folders/{id}/empty.
// The restrictive sibling of the cascading delete: refuses to remove a
// folder that still holds documents.
func (h *Handler) deleteEmpty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "folder"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid folder id")
		return
	}

	f, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Folder not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load folder")
		return
	}

	if f.IsDefault {
		jsonutil.BadRequest(w, "The default folder cannot be deleted")
		return
	}
	if !f.IsEmpty() {
		jsonutil.BadRequest(w, "Folder is not empty; move or delete its documents first")
		return
	}

	if err := h.folderStore.Delete(ctx, id); err != nil {
		jsonutil.InternalError(w, err, "Failed to delete folder")
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Folder deleted",
		Description: fmt.Sprintf("Empty folder %q deleted", f.Name),
		ActorID:     authz.ActorID(r),
		Meta:        map[string]string{"folder_id": id.Hex(), "name": f.Name},
	})

	jsonutil.OK(w, "Folder deleted", DeletedFolder{ID: id.Hex(), Name: f.Name})
}

// deleteCascade handles DELETE /api/folders/{id} (admin only).
// Removes the folder, every document it owns, and their remote assets.
func (h *Handler) deleteCascade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "folder"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid folder id")
		return
	}

	summary, deletedNames, err := h.cascadeDelete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			jsonutil.NotFound(w, "Folder not found")
		case errors.Is(err, errDefaultFolder):
			jsonutil.BadRequest(w, err.Error())
		default:
			h.logger.Error("cascading folder delete failed",
				zap.String("folder_id", id.Hex()),
				zap.Error(err))
			jsonutil.InternalError(w, err, "Failed to delete folder")
		}
		return
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title:       "Folder deleted with contents",
		Description: fmt.Sprintf("Folder %q deleted along with documents: %s", summary.Folder.Name, strings.Join(deletedNames, ", ")),
		Severity:    audit.SeverityCritical,
		ActorID:     authz.ActorID(r),
		Meta: map[string]string{
			"folder_id":         summary.Folder.ID,
			"documents_deleted": strconv.FormatInt(summary.DocumentsDeleted, 10),
		},
	})

	jsonutil.OK(w, "Folder and contents deleted", summary)
}

// cascadeDelete removes one folder, its documents, and their remote assets.
// The remote batch delete runs before local record deletion, so a failure
// aborts with local state intact; the worst crash outcome is an orphaned
// remote asset rather than a local record pointing at a deleted asset.
func (h *Handler) cascadeDelete(ctx context.Context, id primitive.ObjectID) (DeleteSummary, []string, error) {
	f, err := h.folderStore.GetByID(ctx, id)
	if err != nil {
		return DeleteSummary{}, nil, err
	}
	if f.IsDefault {
		return DeleteSummary{}, nil, errDefaultFolder
	}

	docs, err := h.docStore.GetByIDs(ctx, f.Documents)
	if err != nil {
		return DeleteSummary{}, nil, fmt.Errorf("loading folder documents: %w", err)
	}

	// Snapshot before anything is destroyed.
	if err := h.archiveStore.Save(ctx, archive.SaveInput{
		Data:             f,
		OriginalID:       f.ID,
		SourceCollection: "folders",
		Reason:           archive.ReasonFolderCascade,
	}); err != nil {
		h.logger.Warn("failed to archive folder snapshot",
			zap.String("folder_id", f.ID.Hex()),
			zap.Error(err))
	}

	publicIDs := make([]string, 0, len(docs))
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
		if d.HasAsset() {
			publicIDs = append(publicIDs, d.PublicID)
		}
		if err := h.archiveStore.Save(ctx, archive.SaveInput{
			Data:             d,
			OriginalID:       d.ID,
			SourceCollection: "documents",
			Reason:           archive.ReasonFolderCascade,
		}); err != nil {
			h.logger.Warn("failed to archive document snapshot",
				zap.String("document_id", d.ID.Hex()),
				zap.Error(err))
		}
	}

	if err := h.assetDeleter.Delete(ctx, publicIDs); err != nil {
		return DeleteSummary{}, nil, fmt.Errorf("deleting remote assets: %w", err)
	}

	// Remote assets are gone; remove the local records together so a crash
	// cannot leave the folder pointing at deleted documents.
	var deleted int64
	err = txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		var delErr error
		deleted, delErr = h.docStore.DeleteByIDs(ctx, f.Documents)
		if delErr != nil {
			return fmt.Errorf("deleting document records: %w", delErr)
		}
		if delErr := h.folderStore.Delete(ctx, id); delErr != nil {
			return fmt.Errorf("deleting folder: %w", delErr)
		}
		return nil
	})
	if err != nil {
		return DeleteSummary{}, nil, err
	}

	return DeleteSummary{
		Folder:           DeletedFolder{ID: f.ID.Hex(), Name: f.Name},
		DocumentsDeleted: deleted,
	}, names, nil
}

// listDocuments handles GET /api/folders/{name}/documents.
// Paginated listing of the folder's documents, narrowed by the same q and
// tags parameters the global document search takes.
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := normalize.Name(chi.URLParam(r, "folder"))

	if _, err := h.folderStore.GetByName(ctx, name); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Folder not found")
			return
		}
		jsonutil.InternalError(w, err, "Failed to load folder")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.ParseInt(query.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(query.Get("limit"), 10, 64)
	limit, page = storeutil.Clamp(limit, page)

	var tags []string
	for _, t := range strings.Split(query.Get("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	docs, total, err := h.docStore.Search(ctx, document.SearchOptions{
		Query:  normalize.QueryParam(query.Get("q")),
		Folder: name,
		Tags:   normalize.Tags(tags),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		jsonutil.InternalError(w, err, "Failed to list folder documents")
		return
	}

	jsonutil.OKPaged(w, "Documents retrieved", docs, jsonutil.NewPagination(page, limit, total))
}

// bulkDelete handles DELETE /api/folders (admin only).
// Each folder id is processed independently: one failure is recorded and the
// rest of the batch continues. This is a best-effort batch, not a transaction.
func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BulkDeleteRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if len(req.FolderIDs) == 0 {
		jsonutil.BadRequest(w, "folderIds must not be empty")
		return
	}

	result := BulkDeleteResult{
		BatchID:    uuid.New().String(),
		Successful: []string{},
		Failed:     []BulkDeleteFailure{},
	}

	for _, idStr := range req.FolderIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{ID: idStr, Error: "invalid folder id"})
			continue
		}

		summary, _, err := h.cascadeDelete(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, BulkDeleteFailure{
				ID:    idStr,
				Error: jsonutil.ErrorMessage(err, "delete failed"),
			})
			continue
		}
		result.Successful = append(result.Successful, idStr)
		result.DocumentsDeleted += summary.DocumentsDeleted
	}

	severity := audit.SeverityCritical
	if len(result.Failed) > 0 {
		severity = audit.SeverityWarning
	}
	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title: "Folders bulk deleted",
		Description: fmt.Sprintf("Bulk folder delete: %d succeeded, %d failed, %d documents removed",
			len(result.Successful), len(result.Failed), result.DocumentsDeleted),
		Severity: severity,
		ActorID:  authz.ActorID(r),
		Meta: map[string]string{
			"batch_id":  result.BatchID,
			"requested": strconv.Itoa(len(req.FolderIDs)),
		},
	})

	jsonutil.OK(w, "Bulk folder delete processed", result)
}
