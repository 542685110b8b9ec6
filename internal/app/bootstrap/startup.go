// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/clubvault/clubvault/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting. The context will be cancelled if the process is asked to shut
// down while Startup is running; honor it in any long-running work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Note: Indexes are created in EnsureSchema via indexes.EnsureAll().

	startTaskRunner(deps.MongoDatabase, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	// Failed-request ledger entries are kept for two weeks.
	taskRunner.Register(tasks.LedgerCleanupJob(db, 14*24*time.Hour, logger))

	// Archive snapshots of deleted folders/documents are kept for 90 days.
	taskRunner.Register(tasks.ArchiveCleanupJob(db, 90*24*time.Hour, logger))

	taskRunner.Start()
}
