package storage

import (
	"context"
	"time"

	"github.com/dshills/gocontext-qa/pkg/types"
)

// Storage defines the interface for persisting and querying indexed chunks
type Storage interface {
	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, chunkID int64) (*Chunk, error)
	GetChunkView(ctx context.Context, chunkID int64) (*ChunkView, error)
	DeleteChunk(ctx context.Context, chunkID int64) error

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID int64) (*Embedding, error)

	// Search operations
	SearchVector(ctx context.Context, vector []float32, limit int, filters *types.VectorFilters) ([]VectorResult, error)
	SearchText(ctx context.Context, query string, limit int, filters *types.VectorFilters) ([]TextResult, error)

	// Status operations
	Stats(ctx context.Context) (*Stats, error)

	// Database operations
	Path() string
	Close() error
}

// Chunk is a stored code chunk
type Chunk struct {
	ID           int64
	RepositoryID uint64
	FilePath     string
	Language     string
	Content      string
	StartLine    int
	EndLine      int
	TokenCount   int
	Checksum     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChunkView is the metadata projection of a chunk, without content
type ChunkView struct {
	ChunkID      int64
	RepositoryID uint64
	FilePath     string
	Language     string
	StartLine    int
	EndLine      int
	TokenCount   int
	Checksum     string
}

// Embedding represents a vector embedding for a chunk
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte // Serialized float32 array
	Dimension int
	Model     string
	CreatedAt time.Time
}

// ChunkRef carries the location fields every search result embeds
type ChunkRef struct {
	ChunkID      int64
	RepositoryID uint64
	FilePath     string
	Language     string
	Content      string
}

// VectorResult represents a result from vector similarity search
type VectorResult struct {
	ChunkRef
	SimilarityScore float64
}

// TextResult represents a result from full-text search
type TextResult struct {
	ChunkRef
	BM25Score float64
}

// Stats contains counts about the index
type Stats struct {
	ChunksCount     int
	EmbeddingsCount int
	FilesCount      int
	IndexSizeMB     float64
}

// FromTypesChunk converts types.Chunk to a storage Chunk
func FromTypesChunk(c types.Chunk) *Chunk {
	return &Chunk{
		ID:           c.ID,
		RepositoryID: c.RepositoryID,
		FilePath:     c.FilePath,
		Language:     c.Language.String(),
		Content:      c.Content,
		StartLine:    c.StartLine,
		EndLine:      c.EndLine,
		TokenCount:   c.TokenCount,
		Checksum:     c.Checksum,
	}
}
