// Package assets deletes remote binary assets referenced by document records.
//
// Documents store only metadata; the binary lives in the configured storage
// backend (local disk or S3/CloudFront) under its public id. Deleting a
// document or cascading a folder delete must remove those remote objects.
package assets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ObjectStore is the slice of the storage backend needed for asset cleanup.
// waffle's pantry/storage.Store satisfies it.
type ObjectStore interface {
	Delete(ctx context.Context, key string) error
}

// Deleter removes remote assets through the storage backend.
type Deleter struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewDeleter creates a Deleter over the given storage backend.
func NewDeleter(store ObjectStore, logger *zap.Logger) *Deleter {
	return &Deleter{store: store, logger: logger}
}

// Delete removes a batch of assets by public id. Empty ids are skipped.
// All ids are attempted; failures are aggregated into one error so the
// caller decides whether a partial remote cleanup aborts its operation.
func (d *Deleter) Delete(ctx context.Context, publicIDs []string) error {
	var errs []error
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := d.store.Delete(ctx, id); err != nil {
			d.logger.Warn("failed to delete remote asset",
				zap.String("public_id", id),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("asset %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
