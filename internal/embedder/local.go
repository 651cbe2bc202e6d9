package embedder

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	// DefaultDimension is the vector size of the local embedder
	DefaultDimension = 384

	// LocalModel names the feature-hashing model
	LocalModel = "local-hashing-v1"
)

// LocalEmbedder embeds text by hashing tokens into a fixed number of
// buckets and L2-normalizing the result. Identical text always produces
// identical vectors, and texts sharing tokens have positive similarity.
type LocalEmbedder struct {
	dimension int
	cache     *Cache
}

// NewLocalEmbedder creates a local embedder. cache may be nil.
func NewLocalEmbedder(dimension int, cache *Cache) (*LocalEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dimension)
	}
	return &LocalEmbedder{dimension: dimension, cache: cache}, nil
}

func (l *LocalEmbedder) GenerateEmbedding(ctx context.Context, text string) (*Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if emb, ok := l.cache.Get(hash); ok {
			return emb, nil
		}
	}

	emb := &Embedding{
		Vector:    l.embed(text),
		Dimension: l.dimension,
		Model:     LocalModel,
		Hash:      hash,
	}

	if l.cache != nil {
		l.cache.Set(hash, emb)
	}

	return emb, nil
}

// embed hashes lowercase tokens into signed buckets
func (l *LocalEmbedder) embed(text string) []float32 {
	vector := make([]float32, l.dimension)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], sum)
		bucket := int(sum % uint64(l.dimension))
		if buf[7]&1 == 0 {
			vector[bucket]++
		} else {
			vector[bucket]--
		}
	}

	return normalize(vector)
}

func (l *LocalEmbedder) Dimension() int {
	return l.dimension
}

func (l *LocalEmbedder) Model() string {
	return LocalModel
}

func (l *LocalEmbedder) Close() error {
	return nil
}

// normalize scales v to unit length in place
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
