package types

// SearchRequest is a query-time search request
type SearchRequest struct {
	Query   string         `json:"query"`
	Limit   *int           `json:"limit,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
}

// SearchFilters are structured filters supplied by API callers.
// Empty strings and a nil RepositoryID mean "not set".
type SearchFilters struct {
	Language        string  `json:"language,omitempty"`
	RepositoryID    *uint64 `json:"repository_id,omitempty"`
	FilePathPattern string  `json:"file_path_pattern,omitempty"`
}

// VectorFilters is the canonical filter set applied by retrieval.
// Fields are pointers so that a value set to "" by an inline filter
// is still distinguishable from an unset field.
type VectorFilters struct {
	Language        *string `json:"language,omitempty"`
	RepositoryID    *uint64 `json:"repository_id,omitempty"`
	FilePathPattern *string `json:"file_path_pattern,omitempty"`
}

// SearchResponse is the result of one search request
type SearchResponse struct {
	Results     []SearchResult `json:"results"`
	TotalFound  int            `json:"total_found"`
	QueryTimeMs int64          `json:"query_time_ms"`
	RequestID   string         `json:"request_id"`
}

// SearchResult is a single ranked, fully described hit
type SearchResult struct {
	ChunkID    int64          `json:"chunk_id"`
	Score      float64        `json:"score"`
	Content    string         `json:"content,omitempty"`
	Metadata   ResultMetadata `json:"metadata"`
	Highlights []string       `json:"highlights"`
}

// ResultMetadata describes where a result lives
type ResultMetadata struct {
	FilePath     string   `json:"file_path"`
	Language     Language `json:"language"`
	RepositoryID uint64   `json:"repository_id"`
	StartLine    int      `json:"start_line"`
	EndLine      int      `json:"end_line"`
	TokenCount   int      `json:"token_count"`
	Checksum     string   `json:"checksum"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Uint64Ptr returns a pointer to v
func Uint64Ptr(v uint64) *uint64 {
	return &v
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
