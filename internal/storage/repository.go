// Package storage provides whole-collection persistence for the product and cart stores.
package storage

import "context"

// Repository loads and saves an entire collection as one document.
// It abstracts the underlying data store, allowing for different implementations (e.g., file, in-memory, database).
type Repository[T any] interface {
	// Load returns the full persisted collection.
	// Returns an empty slice if nothing has been stored yet.
	Load(ctx context.Context) ([]T, error)

	// Save replaces the persisted collection with the given one.
	Save(ctx context.Context, items []T) error
}
