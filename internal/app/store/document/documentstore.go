// Package document provides storage for document metadata records.
package document

import (
	"context"
	"regexp"
	"time"

	"github.com/clubvault/clubvault/internal/app/store/storeutil"
	"github.com/clubvault/clubvault/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the documents collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new document store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("documents"),
	}
}

// CreateInput contains the input for creating a document record.
type CreateInput struct {
	Name             string
	OriginalFilename string
	Format           string
	Description      string
	Tags             []string
	Folder           string
	PublicID         string
	Size             int64
	CopiedFrom       primitive.ObjectID
	CreatedByID      primitive.ObjectID
}

// Create creates a new document record.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Document, error) {
	now := time.Now().UTC()
	doc := models.Document{
		ID:               primitive.NewObjectID(),
		Name:             input.Name,
		NameCI:           text.Fold(input.Name),
		OriginalFilename: input.OriginalFilename,
		Format:           input.Format,
		Description:      input.Description,
		Tags:             input.Tags,
		Folder:           input.Folder,
		PublicID:         input.PublicID,
		Size:             input.Size,
		CopiedFrom:       input.CopiedFrom,
		CreatedAt:        now,
		UpdatedAt:        now,
		CreatedByID:      input.CreatedByID,
	}

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// GetByID retrieves a document by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var doc models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByIDs returns all documents matching the given ids.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateInput contains the input for updating a document.
// Nil fields are left unchanged.
type UpdateInput struct {
	Name             *string
	OriginalFilename *string
	Format           *string
	Description      *string
	Tags             []string
	Folder           *string
	UpdatedByID      primitive.ObjectID
}

// Update applies a set-update to a document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = text.Fold(*input.Name)
	}
	if input.OriginalFilename != nil {
		set["original_filename"] = *input.OriginalFilename
	}
	if input.Format != nil {
		set["format"] = *input.Format
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Tags != nil {
		set["tags"] = input.Tags
	}
	if input.Folder != nil {
		set["folder"] = *input.Folder
	}
	if !input.UpdatedByID.IsZero() {
		set["updated_by_id"] = input.UpdatedByID
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// Delete deletes a document record.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByIDs deletes a batch of document records by id and returns the count removed.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// RepointFolderByIDs sets the folder name on every document in ids.
// Used by the full-update rename cascade, which selects by the folder's
// owned document ids.
func (s *Store) RepointFolderByIDs(ctx context.Context, ids []primitive.ObjectID, newFolder string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"folder": newFolder, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// RepointFolderByName sets the folder name on every document currently
// pointing at oldFolder. Used by the partial-update rename cascade, which
// selects by the old folder name so documents the folder's membership array
// has lost track of still get re-pointed.
func (s *Store) RepointFolderByName(ctx context.Context, oldFolder, newFolder string) (int64, error) {
	result, err := s.c.UpdateMany(ctx,
		bson.M{"folder": oldFolder},
		bson.M{"$set": bson.M{"folder": newFolder, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// SearchOptions contains filters for searching documents.
// Empty fields are not applied to the query.
type SearchOptions struct {
	Query  string   // case-insensitive substring across name/original_filename/folder/description/tags
	Folder string   // exact folder name match
	Tags   []string // documents carrying any of these tags
	Page   int64
	Limit  int64
}

// Search returns documents matching the options, newest first, with the
// total count for pagination.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]models.Document, int64, error) {
	filter := bson.M{}

	if opts.Query != "" {
		pattern := regexp.QuoteMeta(opts.Query)
		regex := bson.M{"$regex": pattern, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"original_filename": regex},
			{"folder": regex},
			{"description": regex},
			{"tags": regex},
		}
	}
	if opts.Folder != "" {
		filter["folder"] = opts.Folder
	}
	if len(opts.Tags) > 0 {
		filter["tags"] = bson.M{"$in": opts.Tags}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := storeutil.Paginate(opts.Limit, opts.Page).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// CountByFolder returns the number of documents pointing at a folder name.
func (s *Store) CountByFolder(ctx context.Context, folderName string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"folder": folderName})
}

// Count returns the total number of document records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
