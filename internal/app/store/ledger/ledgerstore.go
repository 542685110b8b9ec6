// internal/app/store/ledger/ledgerstore.go
package ledgerstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry records one failed API request for later debugging.
// Successful requests are not persisted; the ledger exists to answer
// "what did the client actually send when this 4xx/5xx happened".
type Entry struct {
	ID        primitive.ObjectID `bson:"_id"`
	RequestID string             `bson:"request_id"`

	Method   string `bson:"method"`
	Path     string `bson:"path"`
	Query    string `bson:"query,omitempty"`
	RemoteIP string `bson:"remote_ip"`

	// Actor identity forwarded by the gateway, if any
	ActorID   string `bson:"actor_id,omitempty"`
	ActorName string `bson:"actor_name,omitempty"`
	ActorRole string `bson:"actor_role,omitempty"`

	StatusCode   int     `bson:"status_code"`
	DurationMs   float64 `bson:"duration_ms"`
	ErrorClass   string  `bson:"error_class,omitempty"`
	ErrorMessage string  `bson:"error_message,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

// Store provides ledger entry persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new ledger store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ledger_entries")}
}

// Create inserts a new ledger entry.
func (s *Store) Create(ctx context.Context, entry Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// GetByRequestID retrieves a ledger entry by request ID.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (*Entry, error) {
	var entry Entry
	if err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListFilter specifies criteria for listing ledger entries.
type ListFilter struct {
	PathPrefix    string
	StatusCodeMin int
	Since         *time.Time
	Limit         int64
}

// List returns ledger entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	q := bson.M{}
	if filter.PathPrefix != "" {
		q["path"] = bson.M{"$regex": "^" + filter.PathPrefix}
	}
	if filter.StatusCodeMin > 0 {
		q["status_code"] = bson.M{"$gte": filter.StatusCodeMin}
	}
	if filter.Since != nil {
		q["created_at"] = bson.M{"$gte": *filter.Since}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Purge removes entries older than the given cutoff and reports how many
// were deleted.
func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": olderThan}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
