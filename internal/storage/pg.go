package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Collection names used as keys in the collections table.
const (
	ProductsCollection = "products"
	CartsCollection    = "carts"
)

// PgRepository implements Repository by storing the whole collection as a single JSONB document.
type PgRepository[T any] struct {
	db   *pgxpool.Pool
	name string
}

// NewPgRepository creates a repository for the named collection using a PostgreSQL connection pool.
func NewPgRepository[T any](dbp *pgxpool.Pool, name string) *PgRepository[T] {
	return &PgRepository[T]{
		db:   dbp,
		name: name,
	}
}

// Load retrieves the collection document.
// Returns an empty slice if the collection has never been saved.
func (p *PgRepository[T]) Load(ctx context.Context) ([]T, error) {
	var document []byte
	err := p.db.QueryRow(ctx, `SELECT document FROM collections WHERE name = $1`, p.name).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return make([]T, 0), nil
		}
		return nil, fmt.Errorf("failed to load collection %s: %w", p.name, err)
	}
	items := make([]T, 0)
	if err := json.Unmarshal(document, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", p.name, err)
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

// Save upserts the collection document.
func (p *PgRepository[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}
	document, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", p.name, err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO collections (name, document, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		p.name, document)
	if err != nil {
		return fmt.Errorf("failed to save collection %s: %w", p.name, err)
	}
	return nil
}
