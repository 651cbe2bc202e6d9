// Package search turns a query string into ranked, fully described results.
//
// Execute runs, in order: parse and validate, classify, enrich, filter
// merge, hybrid retrieval and result mapping. Each failure is returned as a
// *SearchError tagged with the stage that failed:
//
//	resp, err := coord.Execute(ctx, types.SearchRequest{Query: "parseConfig lang:go"})
//	if search.IsKind(err, search.KindParse) {
//	    // bad input
//	}
//
// # Filters
//
// MergeFilters applies API filters first, then inline filters from the
// query text. Inline aliases:
//
//	language, lang            -> language
//	repo, repo_id, repository -> repository ID (unsigned integer)
//	file, path                -> file path glob
//
// # Metadata
//
// ResultMapper prefers the metadata store and falls back to the fields
// carried on the hit. The fallback has no line range, token count or
// checksum.
package search
