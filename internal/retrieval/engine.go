package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/gocontext-qa/internal/embedder"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// Strategy selects which signals a search uses
type Strategy string

const (
	StrategyLexical  Strategy = "lexical"  // BM25 only
	StrategyVector   Strategy = "vector"   // embedding similarity only
	StrategyHybrid   Strategy = "hybrid"   // lexical + vector + graph with RRF
	StrategyFallback Strategy = "fallback" // lexical + graph with RRF, no vector
)

// DefaultRRFConstant is the k in 1/(k + rank)
const DefaultRRFConstant = 60.0

// Index is the chunk index searched by the lexical and vector signals
type Index interface {
	SearchText(ctx context.Context, query string, limit int, filters *types.VectorFilters) ([]storage.TextResult, error)
	SearchVector(ctx context.Context, vector []float32, limit int, filters *types.VectorFilters) ([]storage.VectorResult, error)
}

// GraphResult is one candidate from the co-occurrence graph
type GraphResult struct {
	storage.ChunkRef
	Score float64
}

// GraphScorer scores chunks by term co-occurrence. Building the graph is
// outside this package.
type GraphScorer interface {
	Score(ctx context.Context, terms []string, limit int, filters *types.VectorFilters) ([]GraphResult, error)
}

// Hit is one ranked retrieval candidate
type Hit struct {
	ChunkID      int64
	Score        float64
	FilePath     string
	Language     string
	RepositoryID uint64
	Content      string
}

// Result is the output of one retrieval call
type Result struct {
	Hits         []Hit
	Strategy     Strategy
	LexicalCount int
	VectorCount  int
	GraphCount   int
}

// Weights scale each signal's contribution to the fused score
type Weights struct {
	Lexical float64
	Vector  float64
	Graph   float64
}

// Config tunes fusion
type Config struct {
	RRFConstant float64
	Weights     Weights
	// CandidateMultiplier is how many candidates per result slot each
	// signal fetches before fusion.
	CandidateMultiplier int
}

// DefaultConfig returns equal weights, k=60 and 2x candidates
func DefaultConfig() Config {
	return Config{
		RRFConstant:         DefaultRRFConstant,
		Weights:             Weights{Lexical: 1, Vector: 1, Graph: 0.5},
		CandidateMultiplier: 2,
	}
}

// Engine fuses lexical, vector and graph signals
type Engine struct {
	index    Index
	embedder embedder.Embedder
	graph    GraphScorer
	cfg      Config
	logger   *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithGraph enables the graph signal
func WithGraph(g GraphScorer) Option {
	return func(e *Engine) { e.graph = g }
}

// WithConfig overrides fusion settings. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.RRFConstant > 0 {
			e.cfg.RRFConstant = cfg.RRFConstant
		}
		if cfg.Weights != (Weights{}) {
			e.cfg.Weights = cfg.Weights
		}
		if cfg.CandidateMultiplier > 0 {
			e.cfg.CandidateMultiplier = cfg.CandidateMultiplier
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a retrieval engine. emb may be nil, in which case the
// vector signal is unavailable.
func NewEngine(index Index, emb embedder.Embedder, opts ...Option) *Engine {
	e := &Engine{
		index:    index,
		embedder: emb,
		cfg:      DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the hybrid strategy
func (e *Engine) Search(ctx context.Context, text string, limit int, filters *types.VectorFilters) (*Result, error) {
	return e.SearchStrategy(ctx, StrategyHybrid, text, limit, filters)
}

// SearchStrategy runs text through the signals selected by strategy
func (e *Engine) SearchStrategy(ctx context.Context, strategy Strategy, text string, limit int, filters *types.VectorFilters) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text cannot be empty")
	}
	if limit <= 0 {
		return &Result{Hits: []Hit{}, Strategy: strategy}, nil
	}

	switch strategy {
	case StrategyLexical:
		return e.lexicalSearch(ctx, text, limit, filters)
	case StrategyVector:
		return e.vectorSearch(ctx, text, limit, filters)
	case StrategyHybrid:
		return e.fusedSearch(ctx, strategy, text, limit, filters, true)
	case StrategyFallback:
		return e.fusedSearch(ctx, strategy, text, limit, filters, false)
	default:
		return nil, fmt.Errorf("unsupported retrieval strategy: %s", strategy)
	}
}

func (e *Engine) lexicalSearch(ctx context.Context, text string, limit int, filters *types.VectorFilters) (*Result, error) {
	results, err := e.index.SearchText(ctx, text, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = hitFromRef(r.ChunkRef, r.BM25Score)
	}
	return &Result{Hits: hits, Strategy: StrategyLexical, LexicalCount: len(results)}, nil
}

func (e *Engine) vectorSearch(ctx context.Context, text string, limit int, filters *types.VectorFilters) (*Result, error) {
	results, err := e.runVector(ctx, text, limit, filters)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = hitFromRef(r.ChunkRef, r.SimilarityScore)
	}
	return &Result{Hits: hits, Strategy: StrategyVector, VectorCount: len(results)}, nil
}

func (e *Engine) runVector(ctx context.Context, text string, limit int, filters *types.VectorFilters) ([]storage.VectorResult, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("vector search unavailable: no embedder configured")
	}
	emb, err := e.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	results, err := e.index.SearchVector(ctx, emb.Vector, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

// fusedSearch fetches every enabled signal concurrently and fuses them.
// Signal failures are collected per signal rather than returned to the
// group, so one failing signal does not cancel the others; the search fails
// only when every enabled signal failed. Cancellation of ctx is returned to
// the group and aborts the whole search.
func (e *Engine) fusedSearch(ctx context.Context, strategy Strategy, text string, limit int, filters *types.VectorFilters, withVector bool) (*Result, error) {
	candidates := limit * e.cfg.CandidateMultiplier

	var (
		textRes                 []storage.TextResult
		vecRes                  []storage.VectorResult
		graphRes                []GraphResult
		textErr, vecErr, grpErr error
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		textRes, textErr = e.index.SearchText(gctx, text, candidates, filters)
		return ctx.Err()
	})
	if withVector {
		g.Go(func() error {
			vecRes, vecErr = e.runVector(gctx, text, candidates, filters)
			return ctx.Err()
		})
	}
	if e.graph != nil {
		g.Go(func() error {
			graphRes, grpErr = e.graph.Score(gctx, strings.Fields(text), candidates, filters)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	enabled, failed := 1, 0
	var errs []error
	if textErr != nil {
		failed++
		errs = append(errs, fmt.Errorf("lexical: %w", textErr))
	}
	if withVector {
		enabled++
		if vecErr != nil {
			failed++
			errs = append(errs, fmt.Errorf("vector: %w", vecErr))
		}
	}
	if e.graph != nil {
		enabled++
		if grpErr != nil {
			failed++
			errs = append(errs, fmt.Errorf("graph: %w", grpErr))
		}
	}
	if failed == enabled {
		return nil, fmt.Errorf("all retrieval signals failed: %w", errors.Join(errs...))
	}
	if failed > 0 {
		e.logger.Warn("retrieval signal failed, continuing with remaining signals",
			"strategy", strategy,
			"error", errors.Join(errs...))
	}

	fused := e.applyRRF(textRes, vecRes, graphRes)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	return &Result{
		Hits:         fused,
		Strategy:     strategy,
		LexicalCount: len(textRes),
		VectorCount:  len(vecRes),
		GraphCount:   len(graphRes),
	}, nil
}

// applyRRF combines ranked lists with weighted Reciprocal Rank Fusion:
// score(d) = sum over signals of w / (k + rank(d))
func (e *Engine) applyRRF(textRes []storage.TextResult, vecRes []storage.VectorResult, graphRes []GraphResult) []Hit {
	k := e.cfg.RRFConstant
	w := e.cfg.Weights

	byID := make(map[int64]*Hit)
	add := func(ref storage.ChunkRef, rank int, weight float64) {
		h, ok := byID[ref.ChunkID]
		if !ok {
			hit := hitFromRef(ref, 0)
			h = &hit
			byID[ref.ChunkID] = h
		}
		if h.FilePath == "" {
			fillHit(h, ref)
		}
		h.Score += weight / (k + float64(rank+1))
	}

	for rank, r := range textRes {
		add(r.ChunkRef, rank, w.Lexical)
	}
	for rank, r := range vecRes {
		add(r.ChunkRef, rank, w.Vector)
	}
	for rank, r := range graphRes {
		add(r.ChunkRef, rank, w.Graph)
	}

	hits := make([]Hit, 0, len(byID))
	for _, h := range byID {
		hits = append(hits, *h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	return hits
}

func hitFromRef(ref storage.ChunkRef, score float64) Hit {
	return Hit{
		ChunkID:      ref.ChunkID,
		Score:        score,
		FilePath:     ref.FilePath,
		Language:     ref.Language,
		RepositoryID: ref.RepositoryID,
		Content:      ref.Content,
	}
}

// fillHit copies location fields from a richer ref; graph results may carry only an ID
func fillHit(h *Hit, ref storage.ChunkRef) {
	h.FilePath = ref.FilePath
	h.Language = ref.Language
	h.RepositoryID = ref.RepositoryID
	h.Content = ref.Content
}
