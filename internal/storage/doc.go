// Package storage provides SQLite-based persistence for indexed code data.
//
// The storage layer manages:
//   - Document metadata and content hashes
//   - Code and documentation chunks
//   - Vector embeddings
//   - Full-text search postings
//
// # Database Schema
//
// Tables:
//   - documents: one row per indexed file, keyed by (collection, file_path)
//   - chunks: line-ranged slices of a document's content
//   - chunks_fts: FTS5 full-text index over chunk content
//   - embeddings: one vector per chunk, serialized as little-endian float32
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.codescout/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	changed, err := store.HasChanged(ctx, "myrepo", "internal/auth/auth.go", hash)
//	if changed {
//	    err = store.IndexDocument(ctx, doc, chunks)
//	}
//
// # Atomicity
//
// IndexDocument replaces a document's chunk set inside a single transaction.
// Deleting chunks cascades to their embeddings through foreign keys, and FTS
// triggers keep the postings synchronized, so a failed replace leaves the
// previous state intact.
//
// # Search
//
// SearchText queries the FTS5 index with bm25 ranking; scores are normalized
// into [0, 1), higher meaning more relevant. SearchVector scans stored
// embeddings and ranks by cosine similarity. The searcher package fuses the
// two result lists.
//
// # Build Tags
//
// Two build configurations are supported:
//
// Pure Go (default, or the purego tag): modernc.org/sqlite, no C compiler
// required.
//
// CGO (sqlite_cgo tag): github.com/mattn/go-sqlite3, faster on large
// indexes.
package storage
