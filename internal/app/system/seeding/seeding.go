// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"

	folderstore "github.com/clubvault/clubvault/internal/app/store/folder"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, defaultFolder string, logger *zap.Logger) error {
	if err := seedDefaultFolder(ctx, db, defaultFolder, logger); err != nil {
		return err
	}
	return nil
}

// seedDefaultFolder creates the system default folder if it doesn't exist.
// The default folder is the fallback home for documents and cannot be
// deleted through either delete path.
func seedDefaultFolder(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	if name == "" {
		return nil
	}

	store := folderstore.New(db)

	exists, err := store.NameExists(ctx, name, nil)
	if err != nil {
		logger.Error("failed to check default folder", zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	if _, err := store.Create(ctx, folderstore.CreateInput{
		Name:      name,
		IsDefault: true,
	}); err != nil {
		// A concurrent instance may have seeded it first.
		if errors.Is(err, folderstore.ErrDuplicateName) {
			return nil
		}
		logger.Error("failed to seed default folder",
			zap.String("name", name),
			zap.Error(err))
		return err
	}

	logger.Info("seeded default folder", zap.String("name", name))
	return nil
}
