// Package storage provides the SQLite-backed chunk index used by search and
// benchmarking.
//
// The storage layer manages:
//   - Indexed code chunks with their location metadata
//   - Vector embeddings for chunks
//   - The FTS5 full-text index used for BM25 ranking
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations
//   - chunks: chunk content, file path, language, repository and line range
//   - chunks_fts: FTS5 index over chunk content and file path
//   - embeddings: little-endian float32 vectors per chunk
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage(".gocontext/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	chunk := &storage.Chunk{RepositoryID: 1, FilePath: "main.go", ...}
//	if err := db.UpsertChunk(ctx, chunk); err != nil {
//	    return err
//	}
//
//	view, err := db.GetChunkView(ctx, chunk.ID)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // not indexed
//	}
//
// # Lexical Index Handles
//
// OpenLexicalIndex opens a separate read handle on an existing database.
// Each handle owns its own *sql.DB, so load-test workers never share a
// connection:
//
//	idx, err := storage.OpenLexicalIndex(path)
//	defer idx.Close()
//	hits, err := idx.Search(ctx, "parse config", 10)
//
// # Filters
//
// SearchText and SearchVector accept *types.VectorFilters. Language and
// repository are matched exactly; the file path pattern is a SQLite GLOB.
//
// # Build Tags
//
// CGO Build (sqlite_vec tag) uses github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "sqlite_vec,fts5"
//
// Pure Go Build (default, purego tag) uses modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build -tags "purego"
package storage
