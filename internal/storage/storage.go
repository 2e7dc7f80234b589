package storage

import (
	"context"
	"time"

	"github.com/codescout/codescout-mcp/pkg/types"
)

// Storage is the persistence boundary of the retrieval engine. It is the only
// writer of documents, chunks, lexical postings and vectors, and it owns all
// read-time scoring against stored data.
type Storage interface {
	// HasChanged reports whether (collection, path) needs re-indexing: true
	// when no document exists or the stored content hash differs. Read-only.
	HasChanged(ctx context.Context, collection, path, hash string) (bool, error)

	// IndexDocument atomically replaces the document's metadata and its full
	// chunk set. Stale chunks, their lexical postings and their vectors are
	// removed in the same transaction; on any failure prior state is intact.
	IndexDocument(ctx context.Context, doc *Document, chunks []*types.Chunk) error

	// StoreVectors associates vectors with the document's chunks positionally,
	// chunks ordered by ascending start line. A count mismatch is not an
	// error: association stops at the shorter of the two lists.
	StoreVectors(ctx context.Context, collection, path string, vectors [][]float32, provider, model string) error

	// GetDocument returns the stored document for (collection, path) or
	// ErrNotFound.
	GetDocument(ctx context.Context, collection, path string) (*Document, error)

	// ListChunks returns a document's chunks ordered by ascending start line.
	ListChunks(ctx context.Context, documentID int64) ([]*Chunk, error)

	// DeleteDocument removes a document; chunks and vectors cascade.
	DeleteDocument(ctx context.Context, collection, path string) error

	// SearchText runs the lexical query: whitespace tokens, every term
	// required, prefix matching per term. An empty token set yields an empty
	// result, not an error. Rows are ordered by the underlying ranking
	// (best first); Score carries the normalized value in [0,1).
	SearchText(ctx context.Context, query string, limit int) ([]SearchRow, error)

	// SearchVector scans every stored vector, scoring cosine similarity
	// against queryVector. Vectors of a different length are non-matching.
	// Rows are ordered by similarity descending and truncated to limit.
	SearchVector(ctx context.Context, queryVector []float32, limit int) ([]SearchRow, error)

	// Stats reports index-wide counts.
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// Document is one indexed file within a named collection. (Collection,
// FilePath) is the stable identity; re-indexing updates the row in place.
type Document struct {
	ID          int64
	Collection  string
	FilePath    string // relative to the indexing root
	ContentHash string // hex-encoded SHA-256 of the file content
	Language    string
	LastIndexed time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Chunk is the persisted form of a retrieval chunk.
type Chunk struct {
	ID         int64
	DocumentID int64
	StartLine  int
	EndLine    int
	Content    string
	ChunkType  string
	Language   string
	CreatedAt  time.Time
}

// Embedding is a stored vector for one chunk, serialized as a little-endian
// float32 blob. Dimension consistency across providers is not enforced;
// vectors embedded by a different provider simply never match at query time.
type Embedding struct {
	ID        int64
	ChunkID   int64
	Vector    []byte
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// SearchRow is the single row shape both search paths return. Mapping from
// storage rows to this type is the only place schema knowledge lives; the
// searcher builds types.SearchResult values from it without further queries.
type SearchRow struct {
	ChunkID    int64
	Collection string
	FilePath   string
	StartLine  int
	EndLine    int
	Language   string
	ChunkType  string
	Content    string
	Score      float64
}

// Stats summarizes the index contents.
type Stats struct {
	Documents   int
	Chunks      int
	Vectors     int
	Collections []string
}
