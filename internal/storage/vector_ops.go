package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// searchText matches every whitespace-separated query token as a quoted
// prefix term. FTS5 bm25 ranks are non-positive with smaller meaning more
// relevant; they are normalized into [0, 1) preserving that order.
func searchText(ctx context.Context, q querier, query string, limit int) ([]SearchRow, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return []SearchRow{}, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.id, d.collection, d.file_path, c.start_line, c.end_line,
		       c.language, c.chunk_type, c.content, rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute text search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchRow, 0)
	for rows.Next() {
		var row SearchRow
		var rank float64
		if err := rows.Scan(&row.ChunkID, &row.Collection, &row.FilePath,
			&row.StartLine, &row.EndLine, &row.Language, &row.ChunkType,
			&row.Content, &rank); err != nil {
			return nil, err
		}
		row.Score = normalizeRank(rank)
		results = append(results, row)
	}
	return results, rows.Err()
}

// buildMatchQuery converts free text into an FTS5 match expression of quoted
// prefix terms. Quoting keeps tokens containing FTS operators literal.
func buildMatchQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

// normalizeRank maps a bm25 rank onto [0, 1), higher meaning more relevant.
func normalizeRank(rank float64) float64 {
	abs := math.Abs(rank)
	return abs / (1 + abs)
}

// searchVector scans all stored vectors and ranks chunks by cosine
// similarity to the query. Vectors whose dimension differs from the query
// (stale rows from an earlier embedding model) are skipped.
func searchVector(ctx context.Context, q querier, queryVector []float32, limit int) ([]SearchRow, error) {
	if len(queryVector) == 0 {
		return []SearchRow{}, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.id, d.collection, d.file_path, c.start_line, c.end_line,
		       c.language, c.chunk_type, c.content, e.vector, e.dimension
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]SearchRow, 0)
	for rows.Next() {
		var row SearchRow
		var blob []byte
		var dim int
		if err := rows.Scan(&row.ChunkID, &row.Collection, &row.FilePath,
			&row.StartLine, &row.EndLine, &row.Language, &row.ChunkType,
			&row.Content, &blob, &dim); err != nil {
			return nil, err
		}
		if dim != len(queryVector) {
			continue
		}
		vec, err := deserializeVector(blob)
		if err != nil {
			continue
		}
		row.Score = cosineSimilarity(queryVector, vec)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// serializeVector encodes a float32 vector as little-endian bytes.
func serializeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector decodes a little-endian float32 vector.
func deserializeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

// cosineSimilarity returns the cosine of the angle between a and b. A zero
// vector has no direction and scores 0 against anything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
