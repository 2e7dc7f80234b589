// Package searcher coordinates lexical and semantic retrieval over the
// index and fuses the two rankings.
//
// # Modes
//
//   - keyword: FTS5 bm25 ranking only
//   - semantic: cosine similarity over stored embeddings only
//   - hybrid: both sources run concurrently, each contributing twice the
//     requested limit of candidates, merged with Reciprocal Rank Fusion
//
// # Reciprocal Rank Fusion
//
// Each chunk scores the sum of 1/(k + rank) over the sources that returned
// it, with k = 60. A chunk both sources agree on beats a chunk only one
// source ranked highly, without either source's raw score scale mattering.
// Ties resolve deterministically by discovery order.
//
// # Degradation
//
// Hybrid search without a configured embedder, or with a failing embedding
// provider, falls back to keyword results. Semantic search without an
// embedder is an error.
//
// Responses are cached in-process by (mode, limit, query) with a TTL and
// LRU eviction.
package searcher
