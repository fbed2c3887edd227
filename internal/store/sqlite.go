package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteDriverName     = "sqlite3"
	inMemoryDatabasePath = ":memory:"

	createSelectionTableStatement = `CREATE TABLE IF NOT EXISTS selection_state (
	project TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (project, key)
)`
	selectValueQuery     = `SELECT value FROM selection_state WHERE project = ? AND key = ?`
	upsertValueStatement = `INSERT INTO selection_state (project, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(project, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	errorCreateDatabaseDirectoryFormat = "create database directory: %w"
	errorOpenDatabaseFormat            = "open database %s: %w"
	errorInitializeSchemaFormat        = "initialize selection schema: %w"
	errorResolveProjectFormat          = "resolve project root %s: %w"
	errorQuerySelectionFormat          = "query selection for %s: %w"
	errorDecodeSelectionFormat         = "decode selection for %s: %w"
	errorEncodeSelectionFormat         = "encode selection: %w"
	errorUpsertSelectionFormat         = "store selection for %s: %w"
)

// SQLiteStore keeps selections of many projects in one SQLite database,
// keyed by the absolute project root.
type SQLiteStore struct {
	database *sql.DB
	project  string
}

// NewSQLiteStore opens or creates the database at databasePath. The special
// path ":memory:" keeps the database in memory.
func NewSQLiteStore(databasePath string, projectRoot string) (*SQLiteStore, error) {
	project, absoluteError := filepath.Abs(projectRoot)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorResolveProjectFormat, projectRoot, absoluteError)
	}
	if databasePath != inMemoryDatabasePath {
		if err := os.MkdirAll(filepath.Dir(databasePath), 0o755); err != nil {
			return nil, fmt.Errorf(errorCreateDatabaseDirectoryFormat, err)
		}
	}
	database, openError := sql.Open(sqliteDriverName, databasePath)
	if openError != nil {
		return nil, fmt.Errorf(errorOpenDatabaseFormat, databasePath, openError)
	}
	if databasePath == inMemoryDatabasePath {
		database.SetMaxOpenConns(1)
	}
	if _, schemaError := database.Exec(createSelectionTableStatement); schemaError != nil {
		database.Close()
		return nil, fmt.Errorf(errorInitializeSchemaFormat, schemaError)
	}
	return &SQLiteStore{database: database, project: project}, nil
}

// Load returns the selection of the project, empty when none was saved.
func (sqliteStore *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	var encoded string
	queryError := sqliteStore.database.QueryRowContext(ctx, selectValueQuery, sqliteStore.project, SelectionKey).Scan(&encoded)
	if queryError != nil {
		if errors.Is(queryError, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorQuerySelectionFormat, sqliteStore.project, queryError)
	}
	var paths []string
	if decodeError := json.Unmarshal([]byte(encoded), &paths); decodeError != nil {
		return nil, fmt.Errorf(errorDecodeSelectionFormat, sqliteStore.project, decodeError)
	}
	return normalizePaths(paths), nil
}

// Save replaces the selection of the project.
func (sqliteStore *SQLiteStore) Save(ctx context.Context, paths []string) error {
	encoded, encodeError := json.Marshal(normalizePaths(paths))
	if encodeError != nil {
		return fmt.Errorf(errorEncodeSelectionFormat, encodeError)
	}
	if _, execError := sqliteStore.database.ExecContext(ctx, upsertValueStatement, sqliteStore.project, SelectionKey, string(encoded), time.Now().UTC()); execError != nil {
		return fmt.Errorf(errorUpsertSelectionFormat, sqliteStore.project, execError)
	}
	return nil
}

// Close closes the database connection.
func (sqliteStore *SQLiteStore) Close() error {
	return sqliteStore.database.Close()
}
