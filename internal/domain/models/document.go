package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is the metadata record for a single uploaded file.
//
// The binary itself lives in the remote asset store and is addressed by
// PublicID; deleting a document must also delete that asset. Folder is the
// owning folder's name, not an id reference.
type Document struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	NameCI           string             `bson:"name_ci" json:"-"`
	OriginalFilename string             `bson:"original_filename,omitempty" json:"originalFilename,omitempty"`
	Format           string             `bson:"format,omitempty" json:"format,omitempty"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Folder           string             `bson:"folder,omitempty" json:"folder,omitempty"`
	PublicID         string             `bson:"public_id,omitempty" json:"publicId,omitempty"`
	Size             int64              `bson:"size,omitempty" json:"size,omitempty"`
	CopiedFrom       primitive.ObjectID `bson:"copied_from,omitempty" json:"copiedFrom,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
	CreatedByID      primitive.ObjectID `bson:"created_by_id,omitempty" json:"createdBy,omitempty"`
	UpdatedByID      primitive.ObjectID `bson:"updated_by_id,omitempty" json:"updatedBy,omitempty"`
}

// HasAsset reports whether the document references a remote binary asset.
func (d *Document) HasAsset() bool {
	return d.PublicID != ""
}
