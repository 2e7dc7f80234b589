package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codescout/codescout-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite with FTS5
// lexical postings and BLOB-serialized embedding vectors.
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer; reads proceed via WAL snapshots
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Cascading deletes from documents to chunks to embeddings depend on this
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (or creates) the store at dbPath and applies any
// pending migrations. Use ":memory:" for an ephemeral store in tests.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// HasChanged reports whether (collection, path) needs re-indexing.
func (s *SQLiteStorage) HasChanged(ctx context.Context, collection, path, hash string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM documents WHERE collection = ? AND file_path = ?`,
		collection, path).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stored hash: %w", err)
	}
	return stored != hash, nil
}

// IndexDocument atomically replaces doc's metadata and chunk set. The chunk
// delete cascades to embeddings via foreign keys, and the FTS triggers keep
// the lexical postings in step, so the whole replace commits or rolls back as
// one unit.
func (s *SQLiteStorage) IndexDocument(ctx context.Context, doc *Document, chunks []*types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return err
	}

	// chunks are replaced as a set, never patched in place
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("failed to delete stale chunks: %w", err)
	}

	now := time.Now()
	for _, chunk := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (document_id, start_line, end_line, content, chunk_type, language, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, chunk.StartLine, chunk.EndLine, chunk.Content,
			string(chunk.Type), chunk.Language, now); err != nil {
			return fmt.Errorf("failed to insert chunk at line %d: %w", chunk.StartLine, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document replace: %w", err)
	}
	return nil
}

// upsertDocument inserts or updates the document row and fills doc.ID.
func upsertDocument(ctx context.Context, q querier, doc *Document) error {
	now := time.Now()
	err := q.QueryRowContext(ctx, `
		INSERT INTO documents (collection, file_path, content_hash, language, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			language = excluded.language,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id`,
		doc.Collection, doc.FilePath, doc.ContentHash, doc.Language,
		now, now, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	doc.LastIndexed = now
	doc.UpdatedAt = now
	return nil
}

// StoreVectors attaches vectors to the document's chunks by position, chunks
// ordered by ascending start line. Excess vectors or excess chunks beyond the
// shorter list are silently unused; that is a legitimate state, not an error.
func (s *SQLiteStorage) StoreVectors(ctx context.Context, collection, path string, vectors [][]float32, provider, model string) error {
	doc, err := s.GetDocument(ctx, collection, path)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM chunks WHERE document_id = ? ORDER BY start_line`, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to list chunk ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunkIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		chunkIDs = append(chunkIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	n := len(vectors)
	if len(chunkIDs) < n {
		n = len(chunkIDs)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for i := 0; i < n; i++ {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings (chunk_id, vector, dimension, provider, model, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				vector = excluded.vector,
				dimension = excluded.dimension,
				provider = excluded.provider,
				model = excluded.model`,
			chunkIDs[i], serializeVector(vectors[i]), len(vectors[i]),
			provider, model, now); err != nil {
			return fmt.Errorf("failed to upsert vector for chunk %d: %w", chunkIDs[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vectors: %w", err)
	}
	return nil
}

// GetDocument returns the document for (collection, path) or ErrNotFound.
func (s *SQLiteStorage) GetDocument(ctx context.Context, collection, path string) (*Document, error) {
	var doc Document
	var lastIndexed sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, collection, file_path, content_hash, language, last_indexed_at, created_at, updated_at
		FROM documents
		WHERE collection = ? AND file_path = ?`,
		collection, path).Scan(
		&doc.ID, &doc.Collection, &doc.FilePath, &doc.ContentHash,
		&doc.Language, &lastIndexed, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexed.Valid {
		doc.LastIndexed = lastIndexed.Time
	}
	return &doc, nil
}

// ListChunks returns a document's chunks ordered by ascending start line.
func (s *SQLiteStorage) ListChunks(ctx context.Context, documentID int64) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, start_line, end_line, content, chunk_type, language, created_at
		FROM chunks
		WHERE document_id = ?
		ORDER BY start_line`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*Chunk, 0)
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.StartLine, &chunk.EndLine,
			&chunk.Content, &chunk.ChunkType, &chunk.Language, &chunk.CreatedAt,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// DeleteDocument removes a document; chunks, postings and vectors cascade.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, collection, path string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND file_path = ?`, collection, path)
	return err
}

// Stats reports index-wide counts.
func (s *SQLiteStorage) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.Documents); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&stats.Chunks); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&stats.Vectors); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats.Collections = make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		stats.Collections = append(stats.Collections, name)
	}
	return stats, rows.Err()
}

// SearchText performs prefix-AND lexical search over the FTS index.
func (s *SQLiteStorage) SearchText(ctx context.Context, query string, limit int) ([]SearchRow, error) {
	return searchText(ctx, s.db, query, limit)
}

// SearchVector performs a full-scan cosine similarity search.
func (s *SQLiteStorage) SearchVector(ctx context.Context, queryVector []float32, limit int) ([]SearchRow, error) {
	return searchVector(ctx, s.db, queryVector, limit)
}
