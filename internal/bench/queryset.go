package bench

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Query is one benchmark query with its relevant files
type Query struct {
	ID       string   `yaml:"id" json:"id"`
	Query    string   `yaml:"query" json:"query"`
	Relevant []string `yaml:"relevant" json:"relevant"`
}

// QuerySet is a named list of benchmark queries
type QuerySet struct {
	Name    string  `yaml:"name" json:"name"`
	Queries []Query `yaml:"queries" json:"queries"`
}

// Texts returns the raw query strings in order
func (qs QuerySet) Texts() []string {
	out := make([]string, len(qs.Queries))
	for i, q := range qs.Queries {
		out[i] = q.Query
	}
	return out
}

// LoadQuerySet reads a YAML query set from path
func LoadQuerySet(path string) (QuerySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuerySet{}, fmt.Errorf("read query set: %w", err)
	}
	return ParseQuerySet(data)
}

// ParseQuerySet decodes and validates a YAML query set
func ParseQuerySet(data []byte) (QuerySet, error) {
	var qs QuerySet
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return QuerySet{}, fmt.Errorf("parse query set YAML: %w", err)
	}
	if len(qs.Queries) == 0 {
		return QuerySet{}, ErrEmptyQuerySet
	}

	seen := make(map[string]bool, len(qs.Queries))
	for i, q := range qs.Queries {
		if q.ID == "" {
			return QuerySet{}, fmt.Errorf("query at index %d has no id", i)
		}
		if seen[q.ID] {
			return QuerySet{}, fmt.Errorf("duplicate query id %q", q.ID)
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Query) == "" {
			return QuerySet{}, fmt.Errorf("query %q has empty text", q.ID)
		}
		if len(q.Relevant) == 0 {
			return QuerySet{}, fmt.Errorf("query %q has no relevant files", q.ID)
		}
	}
	return qs, nil
}

// DefaultQuerySet is the built-in set used when no file is configured.
// Relevant paths match any indexed file ending in that path.
func DefaultQuerySet() QuerySet {
	return QuerySet{
		Name: "builtin",
		Queries: []Query{
			{ID: "rrf", Query: "reciprocal rank fusion of lexical and vector results", Relevant: []string{"internal/retrieval/engine.go"}},
			{ID: "bm25", Query: "full text search bm25 score", Relevant: []string{"internal/storage/vector_ops.go", "internal/storage/lexical.go"}},
			{ID: "cosine", Query: "cosine similarity between embedding vectors", Relevant: []string{"internal/storage/vector_ops.go"}},
			{ID: "migrations", Query: "apply schema migrations in version order", Relevant: []string{"internal/storage/migrations.go"}},
			{ID: "filters", Query: "merge inline query filters with request filters", Relevant: []string{"internal/search/filters.go"}},
			{ID: "metadata", Query: "map hit to result with chunk metadata fallback", Relevant: []string{"internal/search/mapper.go"}},
			{ID: "regression", Query: "detect mrr regression against baseline", Relevant: []string{"internal/bench/regression.go"}},
			{ID: "loadtest", Query: "concurrent load test workers latency samples", Relevant: []string{"internal/bench/loadtest.go"}},
			{ID: "embedding-cache", Query: "lru cache for embeddings", Relevant: []string{"internal/embedder/embedder.go"}},
			{ID: "stopwords", Query: "split camelCase identifiers and drop stop words", Relevant: []string{"internal/query/pipeline.go"}},
		},
	}
}
