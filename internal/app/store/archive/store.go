// Package archive persists snapshots of deleted or mutated entities so they
// can be inspected or recovered after destructive operations.
package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Snapshot reasons.
const (
	ReasonDocumentDelete     = "document_delete"
	ReasonDocumentBulkDelete = "document_bulk_delete"
	ReasonFolderCascade      = "folder_cascade_delete"
	ReasonFolderRename       = "folder_rename"
)

// Snapshot is an archived copy of an entity at the moment it was deleted or mutated.
type Snapshot struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	Data             bson.M             `bson:"data"`
	OriginalID       primitive.ObjectID `bson:"original_id"`
	SourceCollection string             `bson:"source_collection"`
	Reason           string             `bson:"reason"`
}

// Store manages archive snapshots.
type Store struct {
	c *mongo.Collection
}

// New creates a new archive Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("archive")}
}

// SaveInput contains the input for archiving an entity.
type SaveInput struct {
	Data             any
	OriginalID       primitive.ObjectID
	SourceCollection string
	Reason           string
}

// Save persists a snapshot. The entity is marshalled through bson so the
// stored shape matches what the source collection held.
func (s *Store) Save(ctx context.Context, input SaveInput) error {
	raw, err := bson.Marshal(input.Data)
	if err != nil {
		return err
	}
	var data bson.M
	if err := bson.Unmarshal(raw, &data); err != nil {
		return err
	}

	snapshot := Snapshot{
		ID:               primitive.NewObjectID(),
		CreatedAt:        time.Now().UTC(),
		Data:             data,
		OriginalID:       input.OriginalID,
		SourceCollection: input.SourceCollection,
		Reason:           input.Reason,
	}
	_, err = s.c.InsertOne(ctx, snapshot)
	return err
}

// GetByOriginalID returns snapshots of one original entity, newest first.
func (s *Store) GetByOriginalID(ctx context.Context, originalID primitive.ObjectID) ([]Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.c.Find(ctx, bson.M{"original_id": originalID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []Snapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}
