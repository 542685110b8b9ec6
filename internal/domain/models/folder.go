package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a named container for documents.
//
// Membership is dual-maintained: the folder carries the set of document ids
// in Documents, and each document carries the owning folder's Name in its
// Folder field. Every mutating operation must keep both sides in agreement.
type Folder struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"` // Case-insensitive uniqueness/sort key
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	IsDefault   bool                 `bson:"is_default" json:"isDefault"`
	Documents   []primitive.ObjectID `bson:"documents" json:"documents"`
	ParentID    *primitive.ObjectID  `bson:"parent_id,omitempty" json:"parent,omitempty"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
	CreatedByID primitive.ObjectID   `bson:"created_by_id,omitempty" json:"createdBy,omitempty"`
	UpdatedByID primitive.ObjectID   `bson:"updated_by_id,omitempty" json:"updatedBy,omitempty"`
}

// IsEmpty reports whether the folder holds no documents.
func (f *Folder) IsEmpty() bool {
	return len(f.Documents) == 0
}

// Contains reports whether the folder's membership set lists the given document id.
func (f *Folder) Contains(id primitive.ObjectID) bool {
	for _, d := range f.Documents {
		if d == id {
			return true
		}
	}
	return false
}
