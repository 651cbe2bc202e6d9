package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/gocontext-qa/internal/chunker"
	"github.com/dshills/gocontext-qa/internal/embedder"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// ErrIndexInProgress is returned when another index run holds the lock
var ErrIndexInProgress = errors.New("indexing already in progress")

// ChunkStore is the subset of storage.Storage the indexer writes to
type ChunkStore interface {
	UpsertChunk(ctx context.Context, chunk *storage.Chunk) error
	UpsertEmbedding(ctx context.Context, embedding *storage.Embedding) error
}

// Indexer coordinates the indexing pipeline: discover -> chunk -> embed -> store
type Indexer struct {
	store    ChunkStore
	embedder embedder.Embedder
	chunker  *chunker.Chunker
	logger   *slog.Logger
	lock     IndexLock
}

// Config contains configuration for one index run
type Config struct {
	RepositoryID  uint64
	Workers       int  // default: runtime.NumCPU()
	SkipTests     bool // skip *_test.go and files under test/ or tests/
	IncludeVendor bool
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	FilesIndexed      int           `json:"files_indexed"`
	FilesFailed       int           `json:"files_failed"`
	ChunksCreated     int           `json:"chunks_created"`
	EmbeddingsCreated int           `json:"embeddings_created"`
	Duration          time.Duration `json:"duration"`
	ErrorMessages     []string      `json:"error_messages,omitempty"`
}

// New creates an Indexer. A nil embedder stores chunks without embeddings.
func New(store ChunkStore, emb embedder.Embedder, c *chunker.Chunker, logger *slog.Logger) *Indexer {
	if c == nil {
		c = chunker.New(chunker.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, embedder: emb, chunker: c, logger: logger}
}

// Index indexes every recognized file under rootPath
func (idx *Indexer) Index(ctx context.Context, rootPath string, cfg *Config) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	if cfg == nil {
		cfg = &Config{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	files, err := discoverFiles(rootPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var (
		indexed, failed, chunks, embeddings atomic.Int32
		mu                                  sync.Mutex
		messages                            []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			nChunks, nEmb, err := idx.indexFile(gctx, rootPath, path, cfg.RepositoryID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				mu.Lock()
				messages = append(messages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				idx.logger.Warn("failed to index file", "path", path, "error", err)
				return nil
			}
			indexed.Add(1)
			chunks.Add(int32(nChunks))
			embeddings.Add(int32(nEmb))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("indexing cancelled: %w", err)
	}

	stats := &Statistics{
		FilesIndexed:      int(indexed.Load()),
		FilesFailed:       int(failed.Load()),
		ChunksCreated:     int(chunks.Load()),
		EmbeddingsCreated: int(embeddings.Load()),
		Duration:          time.Since(start),
		ErrorMessages:     messages,
	}

	idx.logger.Info("indexing completed",
		"root", rootPath,
		"files_indexed", stats.FilesIndexed,
		"files_failed", stats.FilesFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)

	return stats, nil
}

func (idx *Indexer) indexFile(ctx context.Context, rootPath, path string, repoID uint64) (int, int, error) {
	relPath, err := filepath.Rel(rootPath, path)
	if err != nil {
		return 0, 0, err
	}
	relPath = filepath.ToSlash(relPath)

	chunks, err := idx.chunker.ChunkFile(path, relPath, repoID)
	if err != nil {
		return 0, 0, err
	}

	nEmb := 0
	for _, ch := range chunks {
		stored := storage.FromTypesChunk(ch)
		if err := idx.store.UpsertChunk(ctx, stored); err != nil {
			return 0, 0, err
		}
		if idx.embedder == nil {
			continue
		}

		emb, err := idx.embedder.GenerateEmbedding(ctx, ch.Content)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to embed chunk at line %d: %w", ch.StartLine, err)
		}
		err = idx.store.UpsertEmbedding(ctx, &storage.Embedding{
			ChunkID:   stored.ID,
			Vector:    storage.SerializeVector(emb.Vector),
			Dimension: emb.Dimension,
			Model:     emb.Model,
		})
		if err != nil {
			return 0, 0, err
		}
		nEmb++
	}

	return len(chunks), nEmb, nil
}

// discoverFiles finds all files with an indexed extension
func discoverFiles(rootPath string, cfg *Config) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != rootPath && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if name == "node_modules" || (!cfg.IncludeVendor && name == "vendor") {
				return filepath.SkipDir
			}
			if cfg.SkipTests && (name == "test" || name == "tests" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := types.LanguageForPath(path); !ok {
			return nil
		}
		if cfg.SkipTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
