// Package store provides persistence sinks for the flat selection set of a
// project: a JSON state file inside the project, a SQLite key-value table
// shared across projects, and an in-memory store.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SelectionKey is the key under which the selection set is stored.
const SelectionKey = "selectedFiles"

const errorUnknownBackendFormat = "unknown selection store %q (expected %s, %s or %s)"

// Store persists the flat set of selected file paths of one project.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, paths []string) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// Open returns the store named by backend for projectRoot. databasePath is
// used by the sqlite backend only.
func Open(backend string, projectRoot string, databasePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(projectRoot), nil
	case BackendSQLite:
		return NewSQLiteStore(databasePath, projectRoot)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf(errorUnknownBackendFormat, backend, BackendFile, BackendSQLite, BackendMemory)
	}
}

// Close releases resources of stores implementing Closer.
func Close(selectionStore Store) error {
	if closer, ok := selectionStore.(Closer); ok {
		return closer.Close()
	}
	return nil
}

// normalizePaths removes duplicates and empty entries while keeping order.
func normalizePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, exists := seen[path]; exists {
			continue
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}
	return result
}
