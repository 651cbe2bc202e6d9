package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type router struct {
	e    *echo.Echo
	deps Deps
}

func newRouter(e *echo.Echo, deps Deps) *router {
	return &router{e: e, deps: deps}
}

func (r *router) Bind() {
	r.e.GET("/health", r.health)
	if r.deps.Metrics != nil {
		r.e.GET("/metrics", echo.WrapHandler(r.deps.Metrics.Handler()))
	}

	v1 := r.e.Group("/api/v1")
	v1.POST("/search", r.search)

	v1.POST("/benchmarks", r.runSuite)
	v1.GET("/benchmarks/history", r.history)
	v1.GET("/benchmarks/baseline", r.baseline)
	v1.POST("/benchmarks/:mode", r.runMode)

	v1.POST("/loadtests", r.runLoadTest)
	v1.GET("/loadtests", r.loadTests)
}

func (r *router) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) search(c echo.Context) error {
	var req types.SearchRequest
	if err := c.Bind(&req); err != nil {
		return newValidationWrap("invalid request body", err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return newValidation("query is required")
	}
	if req.Limit != nil && *req.Limit < 1 {
		return newValidation("limit must be positive")
	}

	resp, err := r.deps.Searcher.Execute(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *router) runSuite(c echo.Context) error {
	res, err := r.deps.Benchmarker.RunSuite(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (r *router) runMode(c echo.Context) error {
	mode, err := bench.ParseMode(c.Param("mode"))
	if err != nil {
		return newValidationWrap("invalid mode", err)
	}

	res, err := r.deps.Benchmarker.RunMode(c.Request().Context(), mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"mode":   mode,
		"result": res,
	})
}

func (r *router) history(c echo.Context) error {
	records, err := r.deps.Benchmarker.History()
	if err != nil {
		return err
	}
	if m := c.QueryParam("mode"); m != "" {
		mode, err := bench.ParseMode(m)
		if err != nil {
			return newValidationWrap("invalid mode", err)
		}
		filtered := make([]bench.Record, 0, len(records))
		for _, rec := range records {
			if rec.Mode == mode {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	return c.JSON(http.StatusOK, records)
}

func (r *router) baseline(c echo.Context) error {
	records, err := r.deps.Benchmarker.Baseline()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

type loadTestRequest struct {
	Workers         int     `json:"workers"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (r *router) runLoadTest(c echo.Context) error {
	var req loadTestRequest
	if err := c.Bind(&req); err != nil {
		return newValidationWrap("invalid request body", err)
	}
	if req.Workers < 0 {
		return newValidation("workers must not be negative")
	}
	if req.DurationSeconds < 0 {
		return newValidation("duration_seconds must not be negative")
	}

	workers := req.Workers
	if workers == 0 {
		workers = r.deps.DefaultWorkers
	}
	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	if duration == 0 {
		duration = r.deps.DefaultDuration
	}

	res, err := r.deps.Benchmarker.RunLoadTest(c.Request().Context(), workers, duration)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (r *router) loadTests(c echo.Context) error {
	records, err := r.deps.Benchmarker.LoadTestHistory()
	if err != nil {
		return err
	}
	if n := c.QueryParam("limit"); n != "" {
		limit, err := strconv.Atoi(n)
		if err != nil || limit < 1 {
			return newValidation("limit must be a positive integer")
		}
		if len(records) > limit {
			records = records[len(records)-limit:]
		}
	}
	return c.JSON(http.StatusOK, records)
}
