package chunker

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/gocontext-qa/pkg/types"
)

const (
	// DefaultMaxLines is the window size in lines
	DefaultMaxLines = 60

	// DefaultMaxTokens caps the estimated tokens per chunk
	DefaultMaxTokens = 1000

	// DefaultOverlap is the number of lines shared by adjacent windows
	DefaultOverlap = 5

	// TokensPerChar is the heuristic for estimating tokens (chars/4)
	TokensPerChar = 4
)

// Config controls window sizing
type Config struct {
	MaxLines  int
	MaxTokens int
	Overlap   int
}

// DefaultConfig returns the default window sizing
func DefaultConfig() Config {
	return Config{
		MaxLines:  DefaultMaxLines,
		MaxTokens: DefaultMaxTokens,
		Overlap:   DefaultOverlap,
	}
}

// Chunker creates line-window chunks from source files
type Chunker struct {
	cfg Config
}

// New creates a Chunker. Zero or invalid fields fall back to defaults.
func New(cfg Config) *Chunker {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultMaxLines
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxLines {
		cfg.Overlap = 0
	}
	return &Chunker{cfg: cfg}
}

// ChunkFile reads path and chunks it. relPath is stored as the chunk's file
// path and determines the language.
func (c *Chunker) ChunkFile(path, relPath string, repositoryID uint64) ([]types.Chunk, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	lang, _ := types.LanguageForPath(relPath)
	return c.ChunkContent(string(content), relPath, lang, repositoryID), nil
}

// ChunkContent chunks in-memory content. Whitespace-only windows are dropped.
func (c *Chunker) ChunkContent(content, relPath string, lang types.Language, repositoryID uint64) []types.Chunk {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) == 1 && strings.TrimSpace(lines[0]) == "" {
		return nil
	}

	maxChars := c.cfg.MaxTokens * TokensPerChar
	var chunks []types.Chunk

	for start := 0; start < len(lines); {
		end := start
		size := 0
		for end < len(lines) && end-start < c.cfg.MaxLines {
			lineLen := len(lines[end]) + 1
			// Always take at least one line so oversized lines still advance.
			if end > start && size+lineLen > maxChars {
				break
			}
			size += lineLen
			end++
		}

		body := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(body) != "" {
			ch := types.Chunk{
				RepositoryID: repositoryID,
				FilePath:     relPath,
				Language:     lang,
				StartLine:    start + 1,
				EndLine:      end,
				Content:      body,
			}
			ch.ComputeTokenCount()
			ch.ComputeChecksum()
			chunks = append(chunks, ch)
		}

		if end >= len(lines) {
			break
		}
		next := end - c.cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
