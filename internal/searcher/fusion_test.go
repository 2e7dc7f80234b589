package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout/codescout-mcp/internal/storage"
	"github.com/codescout/codescout-mcp/pkg/types"
)

func row(path string, startLine int, score float64) storage.SearchRow {
	return storage.SearchRow{
		Collection: "repo",
		FilePath:   path,
		StartLine:  startLine,
		EndLine:    startLine + 10,
		Language:   "go",
		Content:    path,
		Score:      score,
	}
}

func TestFuseRRF_SharedChunkWins(t *testing.T) {
	// Lexical: A, B, C  Vector: B, A, D
	lexical := []storage.SearchRow{row("a.go", 1, 0.9), row("b.go", 1, 0.8), row("c.go", 1, 0.7)}
	vector := []storage.SearchRow{row("b.go", 1, 0.95), row("a.go", 1, 0.85), row("d.go", 1, 0.6)}

	results := fuseRRF(lexical, vector, 60, 3)
	require.Len(t, results, 3)

	// A: 1/61 + 1/62, B: 1/62 + 1/61 -- tied; A was discovered first
	assert.Equal(t, "a.go", results[0].FilePath)
	assert.Equal(t, "b.go", results[1].FilePath)
	assert.InDelta(t, 1.0/61+1.0/62, results[0].Score, 1e-12)
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-12)

	// C and D each have a single 1/63 contribution; C is lexical and earlier
	assert.Equal(t, "c.go", results[2].FilePath)
	assert.InDelta(t, 1.0/63, results[2].Score, 1e-12)
}

func TestFuseRRF_AllTaggedHybrid(t *testing.T) {
	results := fuseRRF(
		[]storage.SearchRow{row("a.go", 1, 0.5)},
		[]storage.SearchRow{row("b.go", 1, 0.5)},
		60, 10)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, types.MethodHybrid, r.Method)
	}
}

func TestFuseRRF_DedupeByPathAndStartLine(t *testing.T) {
	// Same file, different start lines are distinct candidates
	lexical := []storage.SearchRow{row("a.go", 1, 0.9), row("a.go", 61, 0.8)}
	vector := []storage.SearchRow{row("a.go", 61, 0.7)}

	results := fuseRRF(lexical, vector, 60, 10)
	require.Len(t, results, 2)
	assert.Equal(t, 61, results[0].StartLine)
	assert.InDelta(t, 1.0/62+1.0/61, results[0].Score, 1e-12)
}

func TestFuseRRF_Limit(t *testing.T) {
	lexical := []storage.SearchRow{
		row("a.go", 1, 0.9), row("b.go", 1, 0.8), row("c.go", 1, 0.7), row("d.go", 1, 0.6),
	}
	results := fuseRRF(lexical, nil, 60, 2)
	assert.Len(t, results, 2)
	assert.Equal(t, "a.go", results[0].FilePath)
}

func TestFuseRRF_EmptySources(t *testing.T) {
	assert.Empty(t, fuseRRF(nil, nil, 60, 10))
}

func TestFuseRRF_DefaultConstant(t *testing.T) {
	results := fuseRRF([]storage.SearchRow{row("a.go", 1, 0.9)}, nil, 0, 10)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0/61, results[0].Score, 1e-12)
}

func TestFuseRRF_OrderWithinSourcePreserved(t *testing.T) {
	// Vector-only hits keep their relative order through fusion
	vector := []storage.SearchRow{row("x.go", 1, 0.9), row("y.go", 1, 0.5), row("z.go", 1, 0.1)}
	results := fuseRRF(nil, vector, 60, 10)
	require.Len(t, results, 3)
	assert.Equal(t, "x.go", results[0].FilePath)
	assert.Equal(t, "y.go", results[1].FilePath)
	assert.Equal(t, "z.go", results[2].FilePath)
}
