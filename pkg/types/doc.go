// Package types provides shared type definitions for the gocontext-qa search
// and benchmarking service.
//
// # Search Shapes
//
// SearchRequest is the query-time input accepted by the search coordinator.
// Limit and Filters are optional:
//
//	req := types.SearchRequest{
//	    Query:   "parse config lang:go",
//	    Filters: &types.SearchFilters{FilePathPattern: "internal/*"},
//	}
//
// SearchResponse carries the mapped results, the number of hits returned by
// retrieval, the wall-clock time of the retrieval call and a request ID that
// is unique per call.
//
// # Filters
//
// SearchFilters are the structured filters supplied by API callers.
// VectorFilters are the canonical merged constraints handed to retrieval.
// A nil *VectorFilters means "no constraints", which is distinct from an
// empty non-nil value.
//
// # Languages
//
// Language is a closed enum. ParseLanguage maps names and common aliases to
// the enum and falls back to LanguagePlainText for anything unknown:
//
//	types.ParseLanguage("golang") // LanguageGo
//	types.ParseLanguage("cobol")  // LanguagePlainText
package types
