package types

import "errors"

// Domain errors for type validation
var (
	// Query errors
	ErrEmptyQuery = errors.New("query cannot be empty")

	// Chunk errors
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrInvalidLineRange  = errors.New("start line must be positive and not after end line")
	ErrMissingFilePath   = errors.New("file path is required")
	ErrMissingChecksum   = errors.New("checksum must be computed")
	ErrInvalidSearchSize = errors.New("limit must be between 1 and 100")
)
