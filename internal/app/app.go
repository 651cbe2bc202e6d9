// Package app wires configuration into a running set of services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/gocontext-qa/internal/alert"
	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/chunker"
	"github.com/dshills/gocontext-qa/internal/config"
	"github.com/dshills/gocontext-qa/internal/embedder"
	"github.com/dshills/gocontext-qa/internal/indexer"
	"github.com/dshills/gocontext-qa/internal/observability"
	"github.com/dshills/gocontext-qa/internal/query"
	"github.com/dshills/gocontext-qa/internal/retrieval"
	"github.com/dshills/gocontext-qa/internal/search"
	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/internal/sysmetrics"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// App owns every long-lived service. Close releases them.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Store    *storage.SQLiteStorage
	Embedder embedder.Embedder
	Engine   *retrieval.Engine
	Search   *MeteredSearch
	Bench    *bench.Coordinator
	Indexer  *indexer.Indexer
	QuerySet bench.QuerySet
}

// New builds the service graph from cfg
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	metrics := observability.NewMetrics()

	var cache *embedder.Cache
	if cfg.EmbeddingCacheSize > 0 {
		cache = embedder.NewCache(cfg.EmbeddingCacheSize,
			embedder.WithLookupObserver(metrics.ObserveEmbeddingCacheLookup))
	}
	emb, err := embedder.NewLocalEmbedder(cfg.EmbeddingDimension, cache)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	querySet := bench.DefaultQuerySet()
	if cfg.QuerySetPath != "" {
		if querySet, err = bench.LoadQuerySet(cfg.QuerySetPath); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to load query set: %w", err)
		}
	}

	sampler, err := sysmetrics.NewProcessSampler(ctx, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create process sampler: %w", err)
	}

	engine := retrieval.NewEngine(store, emb,
		retrieval.WithGraph(retrieval.NewCooccurrenceGraph(store, retrieval.GraphConfig{})),
		retrieval.WithLogger(logger),
	)

	coordinator := search.NewCoordinator(
		query.NewDefaultPipeline(),
		engine,
		search.NewResultMapper(store, logger),
		search.WithDefaultLimit(cfg.DefaultLimit),
		search.WithLogger(logger),
	)

	loadTester := bench.NewLoadTester(
		bench.OpenSQLiteLexical,
		cfg.DBPath,
		querySet.Texts(),
		sampler,
		bench.WithResultsPerQuery(cfg.BenchK),
		bench.WithLoadLogger(logger),
	)

	sink := alert.MultiSink{alert.NewLogSink(logger), alert.NewMetricsSink(metrics)}
	benchCoordinator := bench.NewCoordinator(
		bench.NewRetrievalHarness(engine, querySet, cfg.BenchK, logger),
		bench.NewStorage(cfg.BenchDir),
		sink,
		loadTester,
		bench.WithMetrics(metrics),
		bench.WithCoordinatorLogger(logger),
	)

	logger.Info("application initialized",
		"db_path", cfg.DBPath,
		"bench_dir", cfg.BenchDir,
		"query_set", querySet.Name,
		"queries", len(querySet.Queries),
		"storage_driver", storage.DriverName,
		"embedding_model", emb.Model())

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Store:    store,
		Embedder: emb,
		Engine:   engine,
		Search:   &MeteredSearch{coordinator: coordinator, metrics: metrics},
		Bench:    benchCoordinator,
		Indexer:  indexer.New(store, emb, chunker.New(chunker.DefaultConfig()), logger),
		QuerySet: querySet,
	}, nil
}

// Index indexes rootPath into the configured repository
func (a *App) Index(ctx context.Context, rootPath string, workers int) (*indexer.Statistics, error) {
	return a.Indexer.Index(ctx, rootPath, &indexer.Config{
		RepositoryID: a.Config.RepositoryID,
		Workers:      workers,
	})
}

// Close releases the embedder and storage
func (a *App) Close() error {
	return errors.Join(a.Embedder.Close(), a.Store.Close())
}

// MeteredSearch records search outcomes on the metrics registry
type MeteredSearch struct {
	coordinator *search.Coordinator
	metrics     *observability.Metrics
}

// Execute runs the request and records its status and latency
func (m *MeteredSearch) Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	start := time.Now()
	resp, err := m.coordinator.Execute(ctx, req)
	m.metrics.ObserveSearch(SearchStatus(err), time.Since(start))
	return resp, err
}

// SearchStatus maps a search error onto a metrics label
func SearchStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case search.IsKind(err, search.KindParse):
		return "parse"
	case search.IsKind(err, search.KindEnrich):
		return "enrich"
	case search.IsKind(err, search.KindHybrid):
		return "hybrid"
	default:
		return "error"
	}
}
