package folder

import (
	"errors"
	"testing"

	"github.com/clubvault/clubvault/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	created, err := store.Create(ctx, CreateInput{
		Name:        "Match Reports",
		Description: "Weekly match reports",
		CreatedByID: actor,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID.IsZero() {
		t.Error("Create() should assign an id")
	}
	if created.Documents == nil || len(created.Documents) != 0 {
		t.Error("new folder should start with an empty document set")
	}
	if created.NameCI == "" {
		t.Error("Create() should populate name_ci")
	}

	byID, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Name != "Match Reports" {
		t.Errorf("GetByID() name = %q, want %q", byID.Name, "Match Reports")
	}

	byName, err := store.GetByName(ctx, "Match Reports")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != created.ID {
		t.Error("GetByName() should return the created folder")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	if _, err := store.Create(ctx, CreateInput{Name: "Contracts", CreatedByID: actor}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same name differing only in case collides on name_ci.
	_, err := store.Create(ctx, CreateInput{Name: "CONTRACTS", CreatedByID: actor})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateName", err)
	}
}

func TestNameExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, CreateInput{Name: "Medical", CreatedByID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err := store.NameExists(ctx, "medical", nil)
	if err != nil {
		t.Fatalf("NameExists() error = %v", err)
	}
	if !exists {
		t.Error("NameExists() should match case-insensitively")
	}

	// Excluding the folder itself reports no conflict.
	exists, err = store.NameExists(ctx, "Medical", &created.ID)
	if err != nil {
		t.Fatalf("NameExists() with exclude error = %v", err)
	}
	if exists {
		t.Error("NameExists() should ignore the excluded folder")
	}

	exists, err = store.NameExists(ctx, "Missing", nil)
	if err != nil {
		t.Fatalf("NameExists() error = %v", err)
	}
	if exists {
		t.Error("NameExists() should be false for an unknown name")
	}
}

func TestUpdate_RenameCollision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	if _, err := store.Create(ctx, CreateInput{Name: "Scouting", CreatedByID: actor}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	other, err := store.Create(ctx, CreateInput{Name: "Training", CreatedByID: actor})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "scouting"
	err = store.Update(ctx, other.ID, UpdateInput{Name: &name, UpdatedByID: actor})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Update() rename collision error = %v, want ErrDuplicateName", err)
	}

	desc := "Training materials"
	if err := store.Update(ctx, other.ID, UpdateInput{Description: &desc, UpdatedByID: actor}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := store.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Description != desc {
		t.Errorf("Update() description = %q, want %q", got.Description, desc)
	}
	if got.Name != "Training" {
		t.Errorf("Update() should not touch name, got %q", got.Name)
	}
}

func TestAddDocument_UpsertsFolder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	docID := primitive.NewObjectID()

	// Filing into an unknown name brings the folder into existence.
	folder, err := store.AddDocument(ctx, "Press Clippings", docID, actor)
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if folder.Name != "Press Clippings" {
		t.Errorf("AddDocument() folder name = %q", folder.Name)
	}
	if folder.IsDefault {
		t.Error("implicitly created folder should not be the default")
	}
	if !folder.Contains(docID) {
		t.Error("AddDocument() should list the document id")
	}

	// Repeating the call must not duplicate the membership entry.
	folder, err = store.AddDocument(ctx, "Press Clippings", docID, actor)
	if err != nil {
		t.Fatalf("second AddDocument() error = %v", err)
	}
	if len(folder.Documents) != 1 {
		t.Errorf("membership length = %d, want 1", len(folder.Documents))
	}

	second := primitive.NewObjectID()
	folder, err = store.AddDocument(ctx, "Press Clippings", second, actor)
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if len(folder.Documents) != 2 {
		t.Errorf("membership length = %d, want 2", len(folder.Documents))
	}
}

func TestAddDocument_CaseVariantName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	if _, err := store.Create(ctx, CreateInput{Name: "Reports", CreatedByID: actor}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A destination that differs only in case must land in the existing
	// folder rather than fighting its unique index.
	docID := primitive.NewObjectID()
	folder, err := store.AddDocument(ctx, "reports", docID, actor)
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if folder.Name != "Reports" {
		t.Errorf("folder name = %q, want the existing spelling", folder.Name)
	}
	if !folder.Contains(docID) {
		t.Error("existing folder should list the document id")
	}

	folders, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(folders) != 1 {
		t.Errorf("folder count = %d, want 1", len(folders))
	}
}

func TestPullDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	docID := primitive.NewObjectID()
	if _, err := store.AddDocument(ctx, "Finance", docID, actor); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	if err := store.PullDocument(ctx, docID); err != nil {
		t.Fatalf("PullDocument() error = %v", err)
	}

	folder, err := store.GetByName(ctx, "Finance")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if folder.Contains(docID) {
		t.Error("PullDocument() should remove the id from membership")
	}
}

func TestPullDocuments_Batch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	for _, id := range ids {
		if _, err := store.AddDocument(ctx, "Archive 2025", id, actor); err != nil {
			t.Fatalf("AddDocument() error = %v", err)
		}
	}

	if err := store.PullDocuments(ctx, ids[:2]); err != nil {
		t.Fatalf("PullDocuments() error = %v", err)
	}

	folder, err := store.GetByName(ctx, "Archive 2025")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if len(folder.Documents) != 1 || !folder.Contains(ids[2]) {
		t.Errorf("membership after batch pull = %v, want only %s", folder.Documents, ids[2].Hex())
	}

	// Empty batch is a no-op.
	if err := store.PullDocuments(ctx, nil); err != nil {
		t.Fatalf("PullDocuments(nil) error = %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	for _, name := range []string{"bravo", "Alpha", "Charlie"} {
		if _, err := store.Create(ctx, CreateInput{Name: name, CreatedByID: actor}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	folders, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("List() returned %d folders, want 3", len(folders))
	}
	// Sorted case-insensitively by name.
	if folders[0].Name != "Alpha" || folders[1].Name != "bravo" || folders[2].Name != "Charlie" {
		t.Errorf("List() order = %q, %q, %q", folders[0].Name, folders[1].Name, folders[2].Name)
	}

	if err := store.Delete(ctx, folders[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, folders[0].ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByID() after delete error = %v, want ErrNoDocuments", err)
	}
}
