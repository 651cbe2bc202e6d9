package search

import (
	"strconv"

	"github.com/dshills/gocontext-qa/internal/query"
	"github.com/dshills/gocontext-qa/pkg/types"
)

type filterField int

const (
	fieldLanguage filterField = iota + 1
	fieldRepository
	fieldFilePath
)

// filterAliases maps inline field names (case-sensitive) to canonical fields
var filterAliases = map[string]filterField{
	"language":   fieldLanguage,
	"lang":       fieldLanguage,
	"repo":       fieldRepository,
	"repo_id":    fieldRepository,
	"repository": fieldRepository,
	"file":       fieldFilePath,
	"path":       fieldFilePath,
}

// MergeFilters combines API filters with inline query filters. Inline
// filters are applied after API filters, in order, so the last inline
// value for a field wins. Unknown fields and non-numeric repository IDs
// are ignored. It returns nil when no field was set by either source.
func MergeFilters(api *types.SearchFilters, inline []query.Filter) *types.VectorFilters {
	var merged types.VectorFilters
	touched := false

	if api != nil {
		if api.Language != "" {
			merged.Language = types.StringPtr(api.Language)
			touched = true
		}
		if api.RepositoryID != nil {
			merged.RepositoryID = types.Uint64Ptr(*api.RepositoryID)
			touched = true
		}
		if api.FilePathPattern != "" {
			merged.FilePathPattern = types.StringPtr(api.FilePathPattern)
			touched = true
		}
	}

	for _, f := range inline {
		switch filterAliases[f.Field] {
		case fieldLanguage:
			merged.Language = types.StringPtr(f.Value)
			touched = true
		case fieldRepository:
			id, err := strconv.ParseUint(f.Value, 10, 64)
			if err != nil {
				continue
			}
			merged.RepositoryID = types.Uint64Ptr(id)
			touched = true
		case fieldFilePath:
			merged.FilePathPattern = types.StringPtr(f.Value)
			touched = true
		}
	}

	if !touched {
		return nil
	}
	return &merged
}
