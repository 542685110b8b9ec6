package documents

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/clubvault/clubvault/internal/app/store/audit"
	"github.com/clubvault/clubvault/internal/app/store/document"
	"github.com/clubvault/clubvault/internal/app/system/auditlog"
	"github.com/clubvault/clubvault/internal/app/system/authz"
	"github.com/clubvault/clubvault/internal/app/system/jsonutil"
	"github.com/clubvault/clubvault/internal/app/system/normalize"
	"github.com/clubvault/clubvault/internal/app/system/txn"
	"github.com/clubvault/clubvault/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	actionMove = "move"
	actionCopy = "copy"
)

// moveCopy handles PUT /api/documents/move-copy.
//
// Each operation carries its own action and destination, so one batch may
// mix moves and copies. Operations are processed independently; a failure
// is recorded and the batch continues.
func (h *Handler) moveCopy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MoveCopyRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if len(req.Operations) == 0 {
		jsonutil.BadRequest(w, "operations must not be empty")
		return
	}

	actorID := authz.ActorID(r)
	result := MoveCopyResult{
		BatchID: uuid.New().String(),
		Results: []MoveCopyOutcome{},
		Failed:  []MoveCopyFailure{},
	}
	var moved, copied int

	for _, op := range req.Operations {
		dest := normalize.Name(op.Destination)
		if dest == "" {
			result.Failed = append(result.Failed, MoveCopyFailure{ID: op.DocumentID, Error: "destination folder is required"})
			continue
		}

		id, err := primitive.ObjectIDFromHex(op.DocumentID)
		if err != nil {
			result.Failed = append(result.Failed, MoveCopyFailure{ID: op.DocumentID, Error: "invalid document id"})
			continue
		}

		switch strings.ToLower(strings.TrimSpace(op.Action)) {
		case actionMove:
			if err := h.moveDocument(ctx, id, dest, actorID); err != nil {
				result.Failed = append(result.Failed, MoveCopyFailure{
					ID:    op.DocumentID,
					Error: jsonutil.ErrorMessage(err, "move failed"),
				})
				continue
			}
			moved++
			result.Results = append(result.Results, MoveCopyOutcome{
				ID:          op.DocumentID,
				Action:      actionMove,
				Destination: dest,
			})

		case actionCopy:
			clone, err := h.copyDocument(ctx, id, dest, actorID)
			if err != nil {
				result.Failed = append(result.Failed, MoveCopyFailure{
					ID:    op.DocumentID,
					Error: jsonutil.ErrorMessage(err, "copy failed"),
				})
				continue
			}
			copied++
			result.Results = append(result.Results, MoveCopyOutcome{
				ID:          clone.ID.Hex(),
				Action:      actionCopy,
				Destination: dest,
				SourceID:    op.DocumentID,
			})

		default:
			result.Failed = append(result.Failed, MoveCopyFailure{
				ID:    op.DocumentID,
				Error: fmt.Sprintf("unknown action %q", op.Action),
			})
		}
	}

	h.auditLogger.LogAction(ctx, r, auditlog.Action{
		Title: "Documents moved/copied",
		Description: fmt.Sprintf("Batch processed: %d moved, %d copied, %d failed",
			moved, copied, len(result.Failed)),
		Severity: audit.SeverityInfo,
		ActorID:  actorID,
		Meta: map[string]string{
			"batch_id": result.BatchID,
			"moved":    strconv.Itoa(moved),
			"copied":   strconv.Itoa(copied),
			"failed":   strconv.Itoa(len(result.Failed)),
		},
	})

	jsonutil.OK(w, "Move/copy batch processed", result)
}

// moveDocument re-points one document at the destination folder and swaps
// its membership from wherever it is currently listed.
func (h *Handler) moveDocument(ctx context.Context, id primitive.ObjectID, dest string, actorID primitive.ObjectID) error {
	doc, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	if doc.Folder == dest {
		return nil
	}

	if err := txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		if err := h.docStore.Update(ctx, id, document.UpdateInput{
			Folder:      &dest,
			UpdatedByID: actorID,
		}); err != nil {
			return fmt.Errorf("updating document folder: %w", err)
		}
		return h.syncMembership(ctx, id, dest, actorID)
	}); err != nil {
		return err
	}

	h.logger.Info("document moved",
		zap.String("document_id", id.Hex()),
		zap.String("from", doc.Folder),
		zap.String("to", dest))
	return nil
}

// copyDocument clones one document into the destination folder. The clone
// gets a fresh id, points back at its source via copiedFrom, and joins the
// destination folder's membership. The original is untouched.
func (h *Handler) copyDocument(ctx context.Context, id primitive.ObjectID, dest string, actorID primitive.ObjectID) (*models.Document, error) {
	src, err := h.docStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	var clone *models.Document
	if err := txn.Run(ctx, h.db, h.logger, func(ctx context.Context) error {
		var createErr error
		clone, createErr = h.docStore.Create(ctx, document.CreateInput{
			Name:             src.Name,
			OriginalFilename: src.OriginalFilename,
			Format:           src.Format,
			Description:      src.Description,
			Tags:             src.Tags,
			Folder:           dest,
			PublicID:         src.PublicID,
			Size:             src.Size,
			CopiedFrom:       src.ID,
			CreatedByID:      actorID,
		})
		if createErr != nil {
			return fmt.Errorf("creating copy: %w", createErr)
		}
		if _, err := h.folderStore.AddDocument(ctx, dest, clone.ID, actorID); err != nil {
			return fmt.Errorf("adding copy to folder %q: %w", dest, err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return clone, nil
}
