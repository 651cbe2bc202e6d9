package query

import (
	"context"
	"errors"
)

// Errors returned by the default pipeline
var (
	ErrUnbalancedQuote = errors.New("unbalanced quote in query")
	ErrQueryTooLong    = errors.New("query has too many terms")
	ErrNothingToEnrich = errors.New("parsed query has no terms to enrich")
)

// Intent is the classified purpose of a query
type Intent string

const (
	// IntentLiteral queries contain quoted phrases that must match verbatim
	IntentLiteral Intent = "literal"
	// IntentSymbol queries name a single identifier
	IntentSymbol Intent = "symbol"
	// IntentNaturalLanguage queries describe behavior in prose
	IntentNaturalLanguage Intent = "natural_language"
)

// Filter is an inline field:value constraint taken from the query text
type Filter struct {
	Field string
	Value string
}

// ParsedQuery is the structured form of a raw query string
type ParsedQuery struct {
	Raw     string
	Terms   []string
	Phrases []string
	Filters []Filter
}

// Enrichment is the output of enrich: expanded search terms and inline filters
type Enrichment struct {
	ExpandedTerms []string
	Filters       []Filter
}

// Pipeline turns raw query text into expanded terms and filters
type Pipeline interface {
	Parse(ctx context.Context, text string) (*ParsedQuery, error)
	Validate(ctx context.Context, parsed *ParsedQuery) error
	Classify(ctx context.Context, parsed *ParsedQuery) Intent
	Enrich(ctx context.Context, parsed *ParsedQuery, intent Intent) (*Enrichment, error)
}
