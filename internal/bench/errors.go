package bench

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkerFailure marks a load test aborted by a failing or panicking worker
	ErrWorkerFailure = errors.New("load test worker failed")

	// ErrEmptyQuerySet is returned when there are no queries to run
	ErrEmptyQuerySet = errors.New("benchmark query set is empty")

	// ErrUnknownMode is returned by ParseMode for unrecognized names
	ErrUnknownMode = errors.New("unknown benchmark mode")
)

// IOError is a failure reading or writing one of the benchmark files
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("benchmark %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
