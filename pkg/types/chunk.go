package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// Chunk is an indexed section of a source file
type Chunk struct {
	// Identification
	ID           int64
	RepositoryID uint64

	// Location
	FilePath  string
	Language  Language
	StartLine int
	EndLine   int

	// Content
	Content    string
	TokenCount int
	Checksum   string // hex SHA-256 of Content
}

// ValidateContent checks if the chunk content is valid
func (c *Chunk) ValidateContent() error {
	if c.Content == "" {
		return ErrEmptyContent
	}

	if c.StartLine <= 0 || c.StartLine > c.EndLine {
		return ErrInvalidLineRange
	}

	return nil
}

// ComputeTokenCount estimates the number of tokens in the chunk.
// Heuristic: characters / 4.
func (c *Chunk) ComputeTokenCount() int {
	c.TokenCount = len(c.Content) / 4
	return c.TokenCount
}

// ComputeChecksum computes the SHA-256 checksum of the chunk content
func (c *Chunk) ComputeChecksum() string {
	sum := sha256.Sum256([]byte(c.Content))
	c.Checksum = hex.EncodeToString(sum[:])
	return c.Checksum
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	if c.FilePath == "" {
		return ErrMissingFilePath
	}

	if c.Checksum == "" {
		return ErrMissingChecksum
	}

	return nil
}
