// Package testutil provides shared fixtures for tests that need a real
// MongoDB, an authenticated request, or a fake asset store.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clubvault/clubvault/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// defaultMongoURI is used unless CLUBVAULT_TEST_MONGO_URI is set.
const defaultMongoURI = "mongodb://localhost:27017"

var shared struct {
	once   sync.Once
	client *mongo.Client
	err    error
}

func getClient() (*mongo.Client, error) {
	shared.once.Do(func() {
		uri := os.Getenv("CLUBVAULT_TEST_MONGO_URI")
		if uri == "" {
			uri = defaultMongoURI
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(uri).
			SetMaxPoolSize(200).
			SetMaxConnIdleTime(30 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		shared.client, shared.err = mongo.Connect(ctx, opts)
		if shared.err == nil {
			shared.err = shared.client.Ping(ctx, nil)
		}
	})
	return shared.client, shared.err
}

// SetupTestDB hands the test its own database, dropped clean and carrying
// the production indexes. Deriving the name from the test lets packages run
// in parallel without stepping on each other; the database is dropped again
// on cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := getClient()
	if err != nil {
		t.Fatalf("connecting to test MongoDB: %v", err)
	}

	db := client.Database("clubvault_test_" + dbSuffix(t.Name()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("dropping stale test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("creating indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("dropping test database: %v", err)
		}
	})

	return db
}

// dbSuffix maps a test name onto characters MongoDB accepts in a database
// name, capped so the full name stays under the 63 character limit.
func dbSuffix(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if len(s) > 47 {
		s = s[:47]
	}
	return s
}

// TestContext returns a context generous enough for any single test's
// database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
