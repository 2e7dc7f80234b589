// Package indexer walks a repository tree and feeds files through the
// hash -> chunk -> store -> embed pipeline.
//
// Files are processed concurrently by an errgroup worker pool. Each file is
// content-hashed first; unchanged files are skipped without touching the
// chunker or the embedding provider. Changed files get their chunk set
// replaced atomically, then their chunks embedded in batches. A failed
// embedding leaves the file keyword-searchable; it never aborts the run.
//
// A per-tree advisory file lock keeps concurrent indexing processes from
// interleaving writes into the same index.
//
//	idx := indexer.New(store, emb, logger)
//	stats, err := idx.IndexRepo(ctx, "myrepo", "/path/to/repo", nil)
package indexer
