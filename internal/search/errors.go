package search

import (
	"errors"
	"fmt"
)

// ErrorKind classifies which stage of a search failed
type ErrorKind string

const (
	KindParse  ErrorKind = "parse"
	KindEnrich ErrorKind = "enrich"
	KindHybrid ErrorKind = "hybrid"
)

// SearchError is returned by Coordinator.Execute. It keeps the
// collaborator's error as its cause.
type SearchError struct {
	Kind ErrorKind
	Err  error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a SearchError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *SearchError
	return errors.As(err, &se) && se.Kind == kind
}

func newError(kind ErrorKind, err error) error {
	return &SearchError{Kind: kind, Err: err}
}
