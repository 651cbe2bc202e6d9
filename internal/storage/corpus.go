package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dshills/gocontext-qa/pkg/types"
)

// ListChunks returns every chunk matching filters, ordered by id
func (s *SQLiteStorage) ListChunks(ctx context.Context, filters *types.VectorFilters) ([]ChunkRef, error) {
	query := `
		SELECT c.id, c.repository_id, c.file_path, c.language, c.content
		FROM chunks c
		WHERE 1 = 1
	`
	query, args := applyFilters(query, nil, filters)
	query += " ORDER BY c.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	refs := make([]ChunkRef, 0, 256)
	for rows.Next() {
		var (
			ref    ChunkRef
			repoID int64
		)
		if err := rows.Scan(&ref.ChunkID, &repoID, &ref.FilePath, &ref.Language, &ref.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		ref.RepositoryID = uint64(repoID)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// CorpusVersion fingerprints the chunk table. It changes whenever a chunk
// is inserted, updated or deleted.
func (s *SQLiteStorage) CorpusVersion(ctx context.Context) (string, error) {
	var (
		count   int64
		maxID   int64
		updated sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(id), 0), MAX(updated_at) FROM chunks`,
	).Scan(&count, &maxID, &updated)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus version: %w", err)
	}
	return fmt.Sprintf("%d:%d:%s", count, maxID, updated.String), nil
}
