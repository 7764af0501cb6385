package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryRepository implements Repository by keeping the encoded collection in memory.
// Items are stored in their JSON form so callers never share slices with the repository.
type MemoryRepository[T any] struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryRepository creates a new in-memory repository seeded with items.
func NewMemoryRepository[T any](items ...T) *MemoryRepository[T] {
	r := &MemoryRepository[T]{data: []byte("[]")}
	if len(items) > 0 {
		// seeding with values that cannot be encoded is a programming error
		if err := r.Save(context.Background(), items); err != nil {
			panic(fmt.Sprintf("failed to seed memory repository: %v", err))
		}
	}
	return r
}

// Load decodes a fresh copy of the stored collection.
func (r *MemoryRepository[T]) Load(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]T, 0)
	if err := json.Unmarshal(r.data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return items, nil
}

// Save replaces the stored collection.
func (r *MemoryRepository[T]) Save(_ context.Context, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	return nil
}
