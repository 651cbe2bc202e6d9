// Package indexer populates the chunk index that search and benchmarks read.
//
// An index run walks a directory, chunks every file with a recognized
// extension, stores each chunk and its embedding, and reports counts:
//
//	idx := indexer.New(store, emb, chunker.New(chunker.DefaultConfig()), logger)
//	stats, err := idx.Index(ctx, "/path/to/repo", &indexer.Config{RepositoryID: 1})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("indexed %d files, %d chunks in %v\n",
//	    stats.FilesIndexed, stats.ChunksCreated, stats.Duration)
//
// # Discovery
//
// Hidden directories, vendor and node_modules are skipped. Test files are
// included unless Config.SkipTests is set.
//
// # Concurrency
//
// Files are processed by Config.Workers goroutines from an errgroup. A file
// that fails to read or store is counted in Statistics.FilesFailed and does
// not stop the run; context cancellation does. Only one run may be active
// per Indexer; a concurrent call returns ErrIndexInProgress.
package indexer
