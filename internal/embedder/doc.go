// Package embedder generates vector embeddings for the vector retrieval
// signal.
//
// The Embedder interface is the only thing retrieval depends on, so a model
// server can be plugged in without touching callers. The bundled
// LocalEmbedder needs no network access: it hashes tokens into a fixed
// number of buckets and normalizes the vector, which is enough for the
// vector and hybrid benchmark modes to be exercised end to end.
//
// # Caching
//
// Embeddings are cached by the SHA-256 of their input text in an LRU
// cache. Set and Get copy vectors, so callers may modify them freely. Hits
// and misses are counted and can be forwarded to a metrics collector:
//
//	cache := embedder.NewCache(1000, embedder.WithLookupObserver(metrics.ObserveEmbeddingCacheLookup))
//	emb, err := embedder.NewLocalEmbedder(embedder.DefaultDimension, cache)
//	vec, err := emb.GenerateEmbedding(ctx, "parse config file")
package embedder
