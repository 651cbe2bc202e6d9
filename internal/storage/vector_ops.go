package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/gocontext-qa/pkg/types"
)

// ErrEmptyTextQuery is returned when a text query has no searchable terms
var ErrEmptyTextQuery = errors.New("empty search query")

// searchVector ranks every stored embedding by cosine similarity to queryVector
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, limit int, filters *types.VectorFilters) ([]VectorResult, error) {
	if limit <= 0 {
		return []VectorResult{}, nil
	}

	query := `
		SELECT c.id, c.repository_id, c.file_path, c.language, c.content, e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_id
		WHERE 1 = 1
	`
	query, args := applyFilters(query, nil, filters)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]VectorResult, 0, 256)
	for rows.Next() {
		var (
			result VectorResult
			repoID int64
			blob   []byte
		)
		if err := rows.Scan(&result.ChunkID, &repoID, &result.FilePath, &result.Language, &result.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}

		vector := deserializeVector(blob)
		if len(vector) != len(queryVector) {
			continue // dimension mismatch
		}

		result.RepositoryID = uint64(repoID)
		result.SimilarityScore = cosineSimilarity(queryVector, vector)
		candidates = append(candidates, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SimilarityScore > candidates[j].SimilarityScore
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// searchText performs BM25 full-text search using FTS5
func searchText(ctx context.Context, db *sql.DB, query string, limit int, filters *types.VectorFilters) ([]TextResult, error) {
	match := buildFTSQuery(query)
	if match == "" {
		return nil, ErrEmptyTextQuery
	}
	if limit <= 0 {
		return []TextResult{}, nil
	}

	sqlQuery := `
		SELECT c.id, c.repository_id, c.file_path, c.language, c.content, bm25(chunks_fts) AS score
		FROM chunks_fts
		INNER JOIN chunks c ON c.id = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
	`
	sqlQuery, args := applyFilters(sqlQuery, []interface{}{match}, filters)

	// bm25() is negative; lower is better
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]TextResult, 0, limit)
	for rows.Next() {
		var (
			result TextResult
			repoID int64
			raw    float64
		)
		if err := rows.Scan(&result.ChunkID, &repoID, &result.FilePath, &result.Language, &result.Content, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan text result: %w", err)
		}
		result.RepositoryID = uint64(repoID)
		result.BM25Score = normalizeBM25(raw)
		results = append(results, result)
	}

	return results, rows.Err()
}

// applyFilters appends WHERE clauses for the canonical filters
func applyFilters(query string, args []interface{}, filters *types.VectorFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if filters.Language != nil {
		query += " AND c.language = ?"
		args = append(args, languageFilterValue(*filters.Language))
	}

	if filters.RepositoryID != nil {
		query += " AND c.repository_id = ?"
		args = append(args, int64(*filters.RepositoryID))
	}

	if filters.FilePathPattern != nil {
		query += " AND c.file_path GLOB ?"
		args = append(args, *filters.FilePathPattern)
	}

	return query, args
}

// languageFilterValue canonicalizes known names and aliases. An unknown name
// is matched as given, so it selects nothing instead of plaintext chunks.
func languageFilterValue(name string) string {
	if lang, ok := types.LookupLanguage(name); ok {
		return lang.String()
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeBM25 maps a raw FTS5 score (typically in [-50, 0]) into (0, 1]
func normalizeBM25(raw float64) float64 {
	return 1.0 / (1.0 + math.Abs(raw)/50.0)
}

// buildFTSQuery turns free text into an FTS5 OR-query of quoted terms.
// Quoting every term neutralizes FTS5 operators and special characters.
func buildFTSQuery(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(term)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector encodes a vector for the embeddings table
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector decodes a vector from the embeddings table
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
