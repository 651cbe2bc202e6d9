package search

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// MaxHighlights is the number of expanded terms attached to each result
const MaxHighlights = 3

// MetadataStore resolves chunk IDs to their metadata
type MetadataStore interface {
	GetChunkView(ctx context.Context, chunkID int64) (*storage.ChunkView, error)
}

// ResultMapper turns retrieval hits into search results
type ResultMapper struct {
	store  MetadataStore
	logger *slog.Logger
}

// NewResultMapper creates a mapper backed by store. logger may be nil.
func NewResultMapper(store MetadataStore, logger *slog.Logger) *ResultMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultMapper{store: store, logger: logger}
}

// Map never fails. When the store has no entry for the hit, or the lookup
// errors, metadata is built from the hit itself with zero line range,
// zero token count and an empty checksum.
func (m *ResultMapper) Map(ctx context.Context, hit retrieval.Hit, expandedTerms []string) types.SearchResult {
	result := types.SearchResult{
		ChunkID:    hit.ChunkID,
		Score:      hit.Score,
		Content:    hit.Content,
		Highlights: highlights(expandedTerms),
	}

	view, err := m.store.GetChunkView(ctx, hit.ChunkID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("metadata lookup failed, using hit fields",
				"chunk_id", hit.ChunkID,
				"error", err)
		}
		result.Metadata = types.ResultMetadata{
			FilePath:     hit.FilePath,
			Language:     types.ParseLanguage(hit.Language),
			RepositoryID: hit.RepositoryID,
		}
		return result
	}

	result.Metadata = types.ResultMetadata{
		FilePath:     view.FilePath,
		Language:     types.ParseLanguage(view.Language),
		RepositoryID: view.RepositoryID,
		StartLine:    view.StartLine,
		EndLine:      view.EndLine,
		TokenCount:   view.TokenCount,
		Checksum:     view.Checksum,
	}
	return result
}

func highlights(terms []string) []string {
	n := min(len(terms), MaxHighlights)
	out := make([]string, n)
	copy(out, terms[:n])
	return out
}
