// Package embedder generates vector embeddings for code and documentation
// chunks.
//
// Two providers are available:
//
//   - openai: any OpenAI-compatible embeddings endpoint. Requests are
//     batched and retried with exponential backoff; client errors other
//     than rate limits fail immediately.
//   - local: deterministic hash-derived unit vectors. No network, no API
//     key; useful for tests and for keyword-heavy setups where semantic
//     quality matters less than having the pipeline exercised end to end.
//
// The provider is selected once at startup via New and an explicit Config.
// Embeddings are cached in-process by content hash with LRU eviction, so
// re-indexing unchanged chunks and repeated queries skip the provider.
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:  "openai",
//	    APIKey:    key,
//	    CacheSize: 10000,
//	})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, "func Authenticate(token string) error")
package embedder
