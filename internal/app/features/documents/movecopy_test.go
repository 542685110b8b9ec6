package documents

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/clubvault/clubvault/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoveCopy(t *testing.T) {
	fx := newFixture(t)
	moveMe := fx.seedDoc(t, "move-me", "Inbox")
	copyMe := fx.seedDoc(t, "copy-me", "Inbox")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/move-copy", MoveCopyRequest{
		Operations: []MoveCopyItem{
			{DocumentID: moveMe.ID.Hex(), Action: "move", Destination: "Processed"},
			{DocumentID: copyMe.ID.Hex(), Action: "copy", Destination: "Backup"},
		},
	})
	rec := fx.do(testutil.WithUser(req, testutil.EditorUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	testutil.DecodeJSON(t, rec, &env)
	var result MoveCopyResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(result.Results) != 2 || len(result.Failed) != 0 {
		t.Fatalf("results = %d, failed = %d, want 2/0: %s", len(result.Results), len(result.Failed), rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Move: record re-pointed and membership swapped.
	moved, err := fx.docs.GetByID(ctx, moveMe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if moved.Folder != "Processed" {
		t.Errorf("moved folder = %q, want Processed", moved.Folder)
	}
	inbox, err := fx.folders.GetByName(ctx, "Inbox")
	if err != nil {
		t.Fatalf("GetByName(Inbox) error = %v", err)
	}
	if inbox.Contains(moveMe.ID) {
		t.Error("Inbox should no longer list the moved document")
	}
	processed, err := fx.folders.GetByName(ctx, "Processed")
	if err != nil {
		t.Fatalf("destination folder not created: %v", err)
	}
	if !processed.Contains(moveMe.ID) {
		t.Error("Processed should list the moved document")
	}

	// Copy: original untouched, clone points back at it.
	var cloneID primitive.ObjectID
	for _, res := range result.Results {
		if res.Action == "copy" {
			if res.SourceID != copyMe.ID.Hex() {
				t.Errorf("copy sourceId = %q, want %s", res.SourceID, copyMe.ID.Hex())
			}
			cloneID, err = primitive.ObjectIDFromHex(res.ID)
			if err != nil {
				t.Fatalf("copy result id %q: %v", res.ID, err)
			}
		}
	}
	original, err := fx.docs.GetByID(ctx, copyMe.ID)
	if err != nil {
		t.Fatalf("original should survive a copy: %v", err)
	}
	if original.Folder != "Inbox" {
		t.Errorf("original folder = %q, want Inbox", original.Folder)
	}
	clone, err := fx.docs.GetByID(ctx, cloneID)
	if err != nil {
		t.Fatalf("clone not found: %v", err)
	}
	if clone.Folder != "Backup" {
		t.Errorf("clone folder = %q, want Backup", clone.Folder)
	}
	if clone.CopiedFrom != copyMe.ID {
		t.Errorf("clone copiedFrom = %s, want %s", clone.CopiedFrom.Hex(), copyMe.ID.Hex())
	}
	backup, err := fx.folders.GetByName(ctx, "Backup")
	if err != nil {
		t.Fatalf("GetByName(Backup) error = %v", err)
	}
	if !backup.Contains(cloneID) {
		t.Error("Backup should list the clone")
	}
}

func TestMoveCopy_PartialFailure(t *testing.T) {
	fx := newFixture(t)
	ok := fx.seedDoc(t, "fine", "Inbox")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/move-copy", MoveCopyRequest{
		Operations: []MoveCopyItem{
			{DocumentID: ok.ID.Hex(), Action: "move", Destination: "Done"},
			{DocumentID: "not-an-id", Action: "move", Destination: "Done"},
			{DocumentID: primitive.NewObjectID().Hex(), Action: "copy", Destination: "Done"},
			{DocumentID: ok.ID.Hex(), Action: "rename", Destination: "Done"},
			{DocumentID: ok.ID.Hex(), Action: "move", Destination: "   "},
		},
	})
	rec := fx.do(testutil.WithUser(req, testutil.EditorUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	testutil.DecodeJSON(t, rec, &env)
	var result MoveCopyResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if result.BatchID == "" {
		t.Error("batchId should be set")
	}
	if len(result.Results) != 1 {
		t.Errorf("results = %v, want 1 entry", result.Results)
	}
	if len(result.Failed) != 4 {
		t.Errorf("failed = %v, want 4 entries", result.Failed)
	}
}

func TestMoveCopy_SameFolderIsNoOp(t *testing.T) {
	fx := newFixture(t)
	doc := fx.seedDoc(t, "stay-put", "Inbox")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/move-copy", MoveCopyRequest{
		Operations: []MoveCopyItem{
			{DocumentID: doc.ID.Hex(), Action: "move", Destination: "Inbox"},
		},
	})
	rec := fx.do(testutil.WithUser(req, testutil.EditorUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	inbox, err := fx.folders.GetByName(ctx, "Inbox")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if len(inbox.Documents) != 1 {
		t.Errorf("membership = %v, want exactly one entry", inbox.Documents)
	}
}

func TestMoveCopy_EmptyBatch(t *testing.T) {
	fx := newFixture(t)
	req := testutil.NewJSONRequest(t, http.MethodPut, "/move-copy", MoveCopyRequest{})
	rec := fx.do(testutil.WithUser(req, testutil.EditorUser()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMoveCopy_ActionLabelsCaseInsensitive(t *testing.T) {
	fx := newFixture(t)
	moveMe := fx.seedDoc(t, "titled-move", "Inbox")
	copyMe := fx.seedDoc(t, "titled-copy", "Inbox")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/move-copy", MoveCopyRequest{
		Operations: []MoveCopyItem{
			{DocumentID: moveMe.ID.Hex(), Action: "Move", Destination: "Processed"},
			{DocumentID: copyMe.ID.Hex(), Action: "COPY", Destination: "Backup"},
		},
	})
	rec := fx.do(testutil.WithUser(req, testutil.EditorUser()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var env envelope
	testutil.DecodeJSON(t, rec, &env)
	var result MoveCopyResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if len(result.Results) != 2 || len(result.Failed) != 0 {
		t.Fatalf("results = %d, failed = %d, want 2/0: %s", len(result.Results), len(result.Failed), rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	moved, err := fx.docs.GetByID(ctx, moveMe.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if moved.Folder != "Processed" {
		t.Errorf("moved folder = %q, want Processed", moved.Folder)
	}
}
