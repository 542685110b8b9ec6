package archive

import (
	"testing"

	"github.com/clubvault/clubvault/internal/domain/models"
	"github.com/clubvault/clubvault/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSaveAndGetByOriginalID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc := models.Document{
		ID:       primitive.NewObjectID(),
		Name:     "kit-supplier-contract",
		Folder:   "Contracts",
		PublicID: "assets/kit-supplier-contract",
		Size:     2048,
	}

	err := store.Save(ctx, SaveInput{
		Data:             doc,
		OriginalID:       doc.ID,
		SourceCollection: "documents",
		Reason:           ReasonDocumentDelete,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snapshots, err := store.GetByOriginalID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByOriginalID() error = %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("GetByOriginalID() returned %d snapshots, want 1", len(snapshots))
	}

	snap := snapshots[0]
	if snap.Reason != ReasonDocumentDelete {
		t.Errorf("reason = %q, want %q", snap.Reason, ReasonDocumentDelete)
	}
	if snap.SourceCollection != "documents" {
		t.Errorf("source collection = %q, want documents", snap.SourceCollection)
	}
	if snap.Data["name"] != "kit-supplier-contract" {
		t.Errorf("snapshot data name = %v, want kit-supplier-contract", snap.Data["name"])
	}
}

func TestGetByOriginalID_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	folderID := primitive.NewObjectID()
	for _, reason := range []string{ReasonFolderRename, ReasonFolderCascade} {
		err := store.Save(ctx, SaveInput{
			Data:             models.Folder{ID: folderID, Name: "Season Archive"},
			OriginalID:       folderID,
			SourceCollection: "folders",
			Reason:           reason,
		})
		if err != nil {
			t.Fatalf("Save(%s) error = %v", reason, err)
		}
	}

	snapshots, err := store.GetByOriginalID(ctx, folderID)
	if err != nil {
		t.Fatalf("GetByOriginalID() error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("GetByOriginalID() returned %d snapshots, want 2", len(snapshots))
	}
	if snapshots[0].CreatedAt.Before(snapshots[1].CreatedAt) {
		t.Error("snapshots should be sorted newest first")
	}
}

func TestGetByOriginalID_None(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snapshots, err := store.GetByOriginalID(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetByOriginalID() error = %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("GetByOriginalID() returned %d snapshots, want 0", len(snapshots))
	}
}
