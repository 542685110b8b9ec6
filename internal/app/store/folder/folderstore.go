// Package folder provides storage for document folders.
package folder

import (
	"context"
	"errors"
	"time"

	"github.com/clubvault/clubvault/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateName is returned when a folder with the same name already exists.
// The unique index on name_ci makes the losing writer of a concurrent create
// fail here instead of producing a silent duplicate.
var ErrDuplicateName = errors.New("folder name already exists")

// Store provides access to the folders collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new folder store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("folders"),
	}
}

// CreateInput contains the input for creating a folder.
type CreateInput struct {
	Name        string
	Description string
	IsDefault   bool
	ParentID    *primitive.ObjectID
	CreatedByID primitive.ObjectID
}

// Create creates a new folder with an empty document set.
// Returns ErrDuplicateName if the name is already taken.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Folder, error) {
	now := time.Now().UTC()
	folder := models.Folder{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		NameCI:      text.Fold(input.Name),
		Description: input.Description,
		IsDefault:   input.IsDefault,
		Documents:   []primitive.ObjectID{},
		ParentID:    input.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedByID: input.CreatedByID,
	}

	if _, err := s.c.InsertOne(ctx, folder); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	return &folder, nil
}

// GetByID retrieves a folder by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// GetByName retrieves a folder by exact name.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Folder, error) {
	var folder models.Folder
	if err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// NameExists checks if a folder with the given name exists.
// Pass excludeID to exclude a specific folder (useful for updates).
func (s *Store) NameExists(ctx context.Context, name string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"name_ci": text.Fold(name)}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all folders sorted by case-insensitive name.
func (s *Store) List(ctx context.Context) ([]models.Folder, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})

	cursor, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

// UpdateInput contains the input for updating a folder.
// Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	IsDefault   *bool
	UpdatedByID primitive.ObjectID
}

// Update applies a set-update to a folder.
// Returns ErrDuplicateName if a rename collides with another folder's name.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if input.Name != nil {
		set["name"] = *input.Name
		set["name_ci"] = text.Fold(*input.Name)
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.IsDefault != nil {
		set["is_default"] = *input.IsDefault
	}
	if !input.UpdatedByID.IsZero() {
		set["updated_by_id"] = input.UpdatedByID
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateName
	}
	return err
}

// Delete deletes a folder.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddDocument adds a document id to the folder with the given name,
// creating the folder if it does not exist. Membership uses add-if-absent
// semantics, so repeated calls never duplicate an id. This upsert is the
// mechanism by which folders come into existence implicitly when a document
// is filed into a not-yet-existing folder name.
func (s *Store) AddDocument(ctx context.Context, folderName string, docID primitive.ObjectID, actorID primitive.ObjectID) (*models.Folder, error) {
	now := time.Now().UTC()
	// Filter on the folded key so a destination that differs only in case
	// lands in the existing folder instead of colliding with its unique index.
	filter := bson.M{"name_ci": text.Fold(folderName)}
	update := bson.M{
		"$addToSet": bson.M{"documents": docID},
		"$set":      bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"name":          folderName,
			"is_default":    false,
			"created_at":    now,
			"created_by_id": actorID,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var folder models.Folder
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&folder); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost an upsert race on name_ci; the folder exists now, retry as a plain update.
			return s.AddDocument(ctx, folderName, docID, actorID)
		}
		return nil, err
	}
	return &folder, nil
}

// PullDocument removes a document id from every folder that lists it.
// Membership should be unique to one folder, but the pull runs across the
// whole collection so stale references get cleaned up too.
func (s *Store) PullDocument(ctx context.Context, docID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"documents": docID},
		bson.M{"$pull": bson.M{"documents": docID}},
	)
	return err
}

// PullDocuments removes a batch of document ids from every folder listing any of them.
func (s *Store) PullDocuments(ctx context.Context, docIDs []primitive.ObjectID) error {
	if len(docIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"documents": bson.M{"$in": docIDs}},
		bson.M{"$pull": bson.M{"documents": bson.M{"$in": docIDs}}},
	)
	return err
}
