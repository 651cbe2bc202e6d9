package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/observability"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// GracefulShutdownTimeout bounds how long in-flight requests may drain
const GracefulShutdownTimeout = 10 * time.Second

// Searcher executes search requests
type Searcher interface {
	Execute(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
}

// Benchmarker runs and reports benchmarks
type Benchmarker interface {
	RunMode(ctx context.Context, mode bench.Mode) (bench.Result, error)
	RunSuite(ctx context.Context) (*bench.SuiteResult, error)
	RunLoadTest(ctx context.Context, workers int, duration time.Duration) (bench.LoadTestResult, error)
	History() ([]bench.Record, error)
	Baseline() ([]bench.Record, error)
	LoadTestHistory() ([]bench.LoadTestRecord, error)
}

// Deps are the services the handlers call
type Deps struct {
	Searcher    Searcher
	Benchmarker Benchmarker
	Metrics     *observability.Metrics

	DefaultWorkers  int
	DefaultDuration time.Duration
}

// Server is the HTTP front end
type Server struct {
	Echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// NewServer builds an echo instance with middleware and routes bound
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.DefaultWorkers <= 0 {
		deps.DefaultWorkers = 4
	}
	if deps.DefaultDuration <= 0 {
		deps.DefaultDuration = bench.MinBurst
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	s := &Server{Echo: e, addr: addr, logger: logger}
	s.setupMiddlewares(deps.Metrics)

	newRouter(e, deps).Bind()
	return s
}

func (s *Server) setupMiddlewares(m *observability.Metrics) {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(RequestLogger(s.logger))
	if m != nil {
		s.Echo.Use(Metrics(m))
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := s.Echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
