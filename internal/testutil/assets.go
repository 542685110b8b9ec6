package testutil

import (
	"context"
	"fmt"
	"sync"
)

// FakeAssetStore is an in-memory object store for exercising asset cleanup
// in handler tests. It records deleted keys and can be told to fail for
// specific keys.
type FakeAssetStore struct {
	mu      sync.Mutex
	deleted []string

	// FailKeys lists keys whose deletion should return an error.
	FailKeys map[string]bool
}

// Delete records the key, failing if it is listed in FailKeys.
func (s *FakeAssetStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailKeys[key] {
		return fmt.Errorf("storage delete failed for %s", key)
	}
	s.deleted = append(s.deleted, key)
	return nil
}

// Deleted returns the keys deleted so far.
func (s *FakeAssetStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
