// Package query defines the query pipeline used by search: parse, validate,
// classify and enrich.
//
// DefaultPipeline recognizes:
//   - quoted phrases: "read file"
//   - inline filters: lang:go repo:3 path:internal/*
//   - identifiers: parseConfig, parse_config, config.Load
//
// Enrichment splits identifiers into words, drops stop words from
// natural-language queries and appends common code synonyms.
package query
