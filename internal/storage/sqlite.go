package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/gocontext-qa/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL lets independent read handles run alongside a writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens dbPath and applies pending migrations
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

// Path returns the database path the storage was opened with
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Chunk operations

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	query := `
		INSERT INTO chunks (
			repository_id, file_path, language, content, start_line, end_line,
			token_count, checksum, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, file_path, start_line, end_line)
		DO UPDATE SET
			language = excluded.language,
			content = excluded.content,
			token_count = excluded.token_count,
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		int64(chunk.RepositoryID), chunk.FilePath, chunk.Language, chunk.Content,
		chunk.StartLine, chunk.EndLine, chunk.TokenCount, chunk.Checksum,
		now, now,
	).Scan(&chunk.ID, &chunk.CreatedAt, &chunk.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) GetChunk(ctx context.Context, chunkID int64) (*Chunk, error) {
	query := `
		SELECT id, repository_id, file_path, language, content, start_line, end_line,
		       token_count, checksum, created_at, updated_at
		FROM chunks
		WHERE id = ?
	`
	var chunk Chunk
	var repoID int64
	err := s.db.QueryRowContext(ctx, query, chunkID).Scan(
		&chunk.ID, &repoID, &chunk.FilePath, &chunk.Language, &chunk.Content,
		&chunk.StartLine, &chunk.EndLine, &chunk.TokenCount, &chunk.Checksum,
		&chunk.CreatedAt, &chunk.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk %d: %w", chunkID, err)
	}

	chunk.RepositoryID = uint64(repoID)
	return &chunk, nil
}

// GetChunkView returns the metadata of a chunk without loading its content
func (s *SQLiteStorage) GetChunkView(ctx context.Context, chunkID int64) (*ChunkView, error) {
	query := `
		SELECT id, repository_id, file_path, language, start_line, end_line, token_count, checksum
		FROM chunks
		WHERE id = ?
	`
	var view ChunkView
	var repoID int64
	err := s.db.QueryRowContext(ctx, query, chunkID).Scan(
		&view.ChunkID, &repoID, &view.FilePath, &view.Language,
		&view.StartLine, &view.EndLine, &view.TokenCount, &view.Checksum,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk view %d: %w", chunkID, err)
	}

	view.RepositoryID = uint64(repoID)
	return &view, nil
}

func (s *SQLiteStorage) DeleteChunk(ctx context.Context, chunkID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, chunkID)
	if err != nil {
		return fmt.Errorf("failed to delete chunk %d: %w", chunkID, err)
	}
	return nil
}

// Embedding operations

func (s *SQLiteStorage) UpsertEmbedding(ctx context.Context, embedding *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			model = excluded.model
		RETURNING id
	`
	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		embedding.ChunkID, embedding.Vector, embedding.Dimension, embedding.Model, now,
	).Scan(&embedding.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	embedding.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error) {
	query := `
		SELECT id, chunk_id, vector, dimension, model, created_at
		FROM embeddings
		WHERE chunk_id = ?
	`
	var embedding Embedding
	err := s.db.QueryRowContext(ctx, query, chunkID).Scan(
		&embedding.ID, &embedding.ChunkID, &embedding.Vector,
		&embedding.Dimension, &embedding.Model, &embedding.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding for chunk %d: %w", chunkID, err)
	}
	return &embedding, nil
}

// Search operations

func (s *SQLiteStorage) SearchVector(ctx context.Context, queryVector []float32, limit int, filters *types.VectorFilters) ([]VectorResult, error) {
	return searchVector(ctx, s.db, queryVector, limit, filters)
}

func (s *SQLiteStorage) SearchText(ctx context.Context, query string, limit int, filters *types.VectorFilters) ([]TextResult, error) {
	return searchText(ctx, s.db, query, limit, filters)
}

// Stats returns row counts and the on-disk size of the index
func (s *SQLiteStorage) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM chunks", &stats.ChunksCount},
		{"SELECT COUNT(*) FROM embeddings", &stats.EmbeddingsCount},
		{"SELECT COUNT(DISTINCT repository_id || ':' || file_path) FROM chunks", &stats.FilesCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return stats, nil
}
