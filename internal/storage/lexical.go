package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// LexicalIndex is an independent read handle on the FTS5 index.
// Handles never share a *sql.DB.
type LexicalIndex struct {
	db   *sql.DB
	path string
}

// OpenLexicalIndex opens a new handle on an existing, migrated database
func OpenLexicalIndex(path string) (*LexicalIndex, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexical index %s: %w", path, err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='chunks_fts'").Scan(&name)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open lexical index %s: missing chunks_fts: %w", path, err)
	}

	return &LexicalIndex{db: db, path: path}, nil
}

// Search returns the top k BM25 matches for query
func (l *LexicalIndex) Search(ctx context.Context, query string, k int) ([]TextResult, error) {
	return searchText(ctx, l.db, query, k, nil)
}

// Path returns the database path of the handle
func (l *LexicalIndex) Path() string {
	return l.path
}

// Close releases the handle
func (l *LexicalIndex) Close() error {
	return l.db.Close()
}
