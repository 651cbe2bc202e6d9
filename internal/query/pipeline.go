package query

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/gocontext-qa/pkg/types"
)

// MaxTerms bounds the number of free terms in one query
const MaxTerms = 64

// stopWords are dropped from natural-language queries
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "this": {}, "to": {}, "what": {},
	"where": {}, "which": {}, "with": {},
}

// synonyms maps common code abbreviations to their long form and back
var synonyms = map[string][]string{
	"func":     {"function"},
	"function": {"func"},
	"err":      {"error"},
	"error":    {"err"},
	"cfg":      {"config"},
	"config":   {"cfg", "configuration"},
	"init":     {"initialize"},
	"ctx":      {"context"},
	"req":      {"request"},
	"resp":     {"response"},
	"db":       {"database"},
	"auth":     {"authentication"},
}

// DefaultPipeline is a rule-based Pipeline with no external dependencies
type DefaultPipeline struct{}

// NewDefaultPipeline creates the rule-based pipeline
func NewDefaultPipeline() *DefaultPipeline {
	return &DefaultPipeline{}
}

// Parse splits text into terms, quoted phrases and field:value filters.
// Example: `lang:go "read file" parseConfig` yields one filter, one phrase
// and one term.
func (p *DefaultPipeline) Parse(ctx context.Context, text string) (*ParsedQuery, error) {
	parsed := &ParsedQuery{Raw: text}
	input := []rune(strings.TrimSpace(text))

	for pos := 0; pos < len(input); {
		ch := input[pos]
		switch {
		case unicode.IsSpace(ch):
			pos++
		case ch == '"':
			end := pos + 1
			for end < len(input) && input[end] != '"' {
				end++
			}
			if end >= len(input) {
				return nil, fmt.Errorf("%w at offset %d", ErrUnbalancedQuote, pos)
			}
			if phrase := strings.TrimSpace(string(input[pos+1 : end])); phrase != "" {
				parsed.Phrases = append(parsed.Phrases, phrase)
			}
			pos = end + 1
		default:
			end := pos
			for end < len(input) && !unicode.IsSpace(input[end]) {
				end++
			}
			word := string(input[pos:end])
			if f, ok := parseFilter(word); ok {
				parsed.Filters = append(parsed.Filters, f)
			} else {
				parsed.Terms = append(parsed.Terms, word)
			}
			pos = end
		}
	}

	return parsed, nil
}

// parseFilter recognizes field:value where field is lowercase letters or underscores
func parseFilter(word string) (Filter, bool) {
	field, value, ok := strings.Cut(word, ":")
	if !ok || field == "" || value == "" {
		return Filter{}, false
	}
	for _, r := range field {
		if !(r >= 'a' && r <= 'z') && r != '_' {
			return Filter{}, false
		}
	}
	return Filter{Field: field, Value: value}, true
}

func (p *DefaultPipeline) Validate(ctx context.Context, parsed *ParsedQuery) error {
	if parsed == nil || (len(parsed.Terms) == 0 && len(parsed.Phrases) == 0) {
		return types.ErrEmptyQuery
	}
	if len(parsed.Terms) > MaxTerms {
		return fmt.Errorf("%w: %d > %d", ErrQueryTooLong, len(parsed.Terms), MaxTerms)
	}
	return nil
}

func (p *DefaultPipeline) Classify(ctx context.Context, parsed *ParsedQuery) Intent {
	switch {
	case len(parsed.Phrases) > 0:
		return IntentLiteral
	case len(parsed.Terms) == 1 && isIdentifier(parsed.Terms[0]):
		return IntentSymbol
	default:
		return IntentNaturalLanguage
	}
}

// Enrich lowercases, splits identifiers, drops stop words for prose and
// appends synonyms. Terms keep first-occurrence order without duplicates.
func (p *DefaultPipeline) Enrich(ctx context.Context, parsed *ParsedQuery, intent Intent) (*Enrichment, error) {
	if parsed == nil || (len(parsed.Terms) == 0 && len(parsed.Phrases) == 0) {
		return nil, ErrNothingToEnrich
	}

	var terms termSet
	for _, phrase := range parsed.Phrases {
		for _, w := range strings.Fields(phrase) {
			terms.add(strings.ToLower(w))
		}
	}

	var base []string
	for _, term := range parsed.Terms {
		if intent == IntentSymbol || isIdentifier(term) {
			terms.add(strings.ToLower(term))
		}
		for _, part := range splitIdentifier(term) {
			part = strings.ToLower(part)
			if intent == IntentNaturalLanguage {
				if _, stop := stopWords[part]; stop {
					continue
				}
			}
			terms.add(part)
			base = append(base, part)
		}
	}

	for _, term := range base {
		for _, syn := range synonyms[term] {
			terms.add(syn)
		}
	}

	if len(terms.items) == 0 {
		return nil, ErrNothingToEnrich
	}

	return &Enrichment{
		ExpandedTerms: terms.items,
		Filters:       append([]Filter(nil), parsed.Filters...),
	}, nil
}

type termSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *termSet) add(term string) {
	if term == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[term]; ok {
		return
	}
	s.seen[term] = struct{}{}
	s.items = append(s.items, term)
}

// isIdentifier reports whether s looks like a code identifier:
// camelCase, snake_case or a dotted selector.
func isIdentifier(s string) bool {
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		return false
	}
	hasUpperAfterFirst, hasSep := false, false
	for i, r := range s {
		switch {
		case r == '_' || r == '.':
			hasSep = true
		case unicode.IsUpper(r) && i > 0:
			hasUpperAfterFirst = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}
	return hasUpperAfterFirst || hasSep
}

// splitIdentifier breaks camelCase, snake_case and dotted names into words.
// Punctuation other than separators is dropped.
func splitIdentifier(s string) []string {
	var parts []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			parts = append(parts, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && len(current) > 0:
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	return parts
}
