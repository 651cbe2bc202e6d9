// Package chunker splits source files into line-window chunks for indexing.
//
// Chunking is language-agnostic: a file is cut into windows of at most
// Config.MaxLines lines, and a window is closed early when it would exceed
// Config.MaxTokens estimated tokens. Consecutive windows overlap by
// Config.Overlap lines so a match spanning a boundary is still found in one
// chunk.
//
// # Basic Usage
//
//	c := chunker.New(chunker.DefaultConfig())
//	chunks, err := c.ChunkFile("/repo/internal/app/app.go", "internal/app/app.go", repoID)
//	if err != nil {
//	    return err
//	}
//	for _, ch := range chunks {
//	    fmt.Printf("%s:%d-%d %d tokens\n", ch.FilePath, ch.StartLine, ch.EndLine, ch.TokenCount)
//	}
//
// Token counts use the chars/4 heuristic from types.Chunk.ComputeTokenCount.
package chunker
