// Package retrieval ranks chunks for a query by fusing up to three signals:
// BM25 over the FTS5 index, cosine similarity over embeddings, and an
// optional co-occurrence graph scorer.
//
// Strategies:
//   - lexical: BM25 only
//   - vector: embeddings only
//   - hybrid: all signals, fused with weighted Reciprocal Rank Fusion
//   - fallback: lexical and graph, for when vectors are unavailable
//
// Fusion score for a chunk d is the sum over signals of
// weight / (k + rank(d)), with k = 60 by default. Each signal fetches
// twice the requested limit before fusion.
//
// In fused strategies a failing signal is logged and skipped. The call
// fails only when every enabled signal fails.
package retrieval
