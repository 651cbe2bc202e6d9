package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/dshills/gocontext-qa/internal/storage"
	"github.com/dshills/gocontext-qa/pkg/types"
)

// Corpus lists the indexed chunks the co-occurrence graph is built from
type Corpus interface {
	ListChunks(ctx context.Context, filters *types.VectorFilters) ([]storage.ChunkRef, error)
	CorpusVersion(ctx context.Context) (string, error)
}

// GraphConfig tunes query expansion over the co-occurrence graph
type GraphConfig struct {
	// MaxNeighbors is how many expansion terms each query term contributes
	MaxNeighbors int
	// MinSupport is the minimum number of chunks two terms must share
	MinSupport int
	// NeighborWeight scales expansion terms relative to query terms
	NeighborWeight float64
}

// DefaultGraphConfig returns 8 neighbors, support 2, weight 0.5
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{MaxNeighbors: 8, MinSupport: 2, NeighborWeight: 0.5}
}

// CooccurrenceGraph scores chunks by query terms and their PMI neighbors.
// Two terms are linked when they appear in the same chunk; a link's weight
// is the pointwise mutual information of the pair across the corpus. The
// unfiltered graph is cached and rebuilt when the corpus version changes.
type CooccurrenceGraph struct {
	corpus Corpus
	cfg    GraphConfig

	mu      sync.Mutex
	version string
	cached  *termIndex
}

// NewCooccurrenceGraph creates a graph scorer over corpus. Zero config
// fields keep their defaults.
func NewCooccurrenceGraph(corpus Corpus, cfg GraphConfig) *CooccurrenceGraph {
	def := DefaultGraphConfig()
	if cfg.MaxNeighbors <= 0 {
		cfg.MaxNeighbors = def.MaxNeighbors
	}
	if cfg.MinSupport <= 0 {
		cfg.MinSupport = def.MinSupport
	}
	if cfg.NeighborWeight <= 0 {
		cfg.NeighborWeight = def.NeighborWeight
	}
	return &CooccurrenceGraph{corpus: corpus, cfg: cfg}
}

// Score implements GraphScorer
func (g *CooccurrenceGraph) Score(ctx context.Context, terms []string, limit int, filters *types.VectorFilters) ([]GraphResult, error) {
	if limit <= 0 {
		return []GraphResult{}, nil
	}

	idx, err := g.index(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weights := idx.expand(graphTerms(strings.Join(terms, " ")), g.cfg)
	if len(weights) == 0 {
		return []GraphResult{}, nil
	}

	scores := make(map[int]float64)
	for term, w := range weights {
		posting := idx.postings[term]
		idf := math.Log(1 + float64(len(idx.refs))/float64(len(posting)))
		for _, doc := range posting {
			scores[doc] += w * idf
		}
	}

	results := make([]GraphResult, 0, len(scores))
	for doc, score := range scores {
		results = append(results, GraphResult{ChunkRef: idx.refs[doc], Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// index returns the cached unfiltered index, or a one-off index for filters
func (g *CooccurrenceGraph) index(ctx context.Context, filters *types.VectorFilters) (*termIndex, error) {
	if !emptyFilters(filters) {
		refs, err := g.corpus.ListChunks(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to load graph corpus: %w", err)
		}
		return buildTermIndex(refs), nil
	}

	version, err := g.corpus.CorpusVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check graph corpus: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached != nil && g.version == version {
		return g.cached, nil
	}

	refs, err := g.corpus.ListChunks(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph corpus: %w", err)
	}
	g.cached, g.version = buildTermIndex(refs), version
	return g.cached, nil
}

func emptyFilters(f *types.VectorFilters) bool {
	return f == nil || (f.Language == nil && f.RepositoryID == nil && f.FilePathPattern == nil)
}

type termIndex struct {
	refs     []storage.ChunkRef
	terms    [][]string       // unique terms per chunk
	postings map[string][]int // term -> chunk positions, ascending
}

func buildTermIndex(refs []storage.ChunkRef) *termIndex {
	idx := &termIndex{
		refs:     refs,
		terms:    make([][]string, len(refs)),
		postings: make(map[string][]int),
	}
	for i, ref := range refs {
		terms := graphTerms(ref.Content)
		idx.terms[i] = terms
		for _, t := range terms {
			idx.postings[t] = append(idx.postings[t], i)
		}
	}
	return idx
}

// expand weights each known query term 1 and adds its strongest PMI
// neighbors, scaled so the best neighbor gets cfg.NeighborWeight.
func (idx *termIndex) expand(query []string, cfg GraphConfig) map[string]float64 {
	weights := make(map[string]float64)
	for _, q := range query {
		if len(idx.postings[q]) > 0 {
			weights[q] = 1
		}
	}
	if len(weights) == 0 {
		return weights
	}

	n := float64(len(idx.refs))
	neighbors := make(map[string]float64)
	for q := range weights {
		co := make(map[string]int)
		for _, doc := range idx.postings[q] {
			for _, t := range idx.terms[doc] {
				if _, isQuery := weights[t]; !isQuery {
					co[t]++
				}
			}
		}

		type link struct {
			term string
			pmi  float64
		}
		links := make([]link, 0, len(co))
		dfq := float64(len(idx.postings[q]))
		for t, c := range co {
			if c < cfg.MinSupport {
				continue
			}
			pmi := math.Log(n * float64(c) / (dfq * float64(len(idx.postings[t]))))
			if pmi > 0 {
				links = append(links, link{t, pmi})
			}
		}
		sort.Slice(links, func(i, j int) bool {
			if links[i].pmi != links[j].pmi {
				return links[i].pmi > links[j].pmi
			}
			return links[i].term < links[j].term
		})
		if len(links) > cfg.MaxNeighbors {
			links = links[:cfg.MaxNeighbors]
		}
		for _, l := range links {
			if l.pmi > neighbors[l.term] {
				neighbors[l.term] = l.pmi
			}
		}
	}

	var maxPMI float64
	for _, pmi := range neighbors {
		maxPMI = math.Max(maxPMI, pmi)
	}
	for t, pmi := range neighbors {
		weights[t] = cfg.NeighborWeight * pmi / maxPMI
	}
	return weights
}

// graphTerms lowercases and deduplicates alphanumeric tokens of two or more
// characters, dropping pure numbers.
func graphTerms(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || isNumber(f) {
			continue
		}
		f = strings.ToLower(f)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
