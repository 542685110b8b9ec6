// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	ledgerstore "github.com/clubvault/clubvault/internal/app/store/ledger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// LedgerCleanupJob creates a job that purges old failed-request ledger
// entries. The ledger is a debugging aid, not an audit trail, so entries
// past the retention window have no value.
func LedgerCleanupJob(db *mongo.Database, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "ledger-cleanup",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			store := ledgerstore.New(db)
			deleted, err := store.Purge(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("purged old ledger entries",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// ArchiveCleanupJob creates a job that removes archive snapshots older
// than the retention window. Snapshots exist so a recent destructive
// operation can be inspected or undone by hand; they are not a backup.
func ArchiveCleanupJob(db *mongo.Database, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "archive-cleanup",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			coll := db.Collection("archive")
			result, err := coll.DeleteMany(ctx, bson.M{
				"created_at": bson.M{"$lt": time.Now().Add(-retention)},
			})
			if err != nil {
				return err
			}
			if result.DeletedCount > 0 {
				logger.Info("purged old archive snapshots",
					zap.Int64("deleted", result.DeletedCount))
			}
			return nil
		},
	}
}
