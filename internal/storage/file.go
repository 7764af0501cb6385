package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileRepository implements Repository on top of a single JSON array file.
type FileRepository[T any] struct {
	path string
}

// NewFileRepository creates a repository backed by the file at path.
// The file (and its directory) is created with an empty array if it does not exist yet.
func NewFileRepository[T any](path string) (*FileRepository[T], error) {
	if path == "" {
		return nil, errors.New("collection file path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat collection file %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialise collection file %s: %w", path, err)
		}
	}
	return &FileRepository[T]{path: path}, nil
}

// Path returns the location of the backing file.
func (f *FileRepository[T]) Path() string {
	return f.path
}

// Load reads and decodes the whole file.
func (f *FileRepository[T]) Load(_ context.Context) ([]T, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file %s: %w", f.path, err)
	}
	items := make([]T, 0)
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection file %s: %w", f.path, err)
	}
	// a literal "null" document decodes into a nil slice
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

// Save encodes items and replaces the file through a temp file and rename,
// so readers never observe a partially written document.
func (f *FileRepository[T]) Save(_ context.Context, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", f.path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace collection file %s: %w", f.path, err)
	}
	return nil
}
