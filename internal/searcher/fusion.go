package searcher

import (
	"fmt"
	"sort"

	"github.com/codescout/codescout-mcp/internal/storage"
	"github.com/codescout/codescout-mcp/pkg/types"
)

// DefaultRRFConstant is the k in 1/(k + rank). 60 keeps single-source
// top hits from drowning out chunks both sources agree on.
const DefaultRRFConstant = 60.0

// fusedCandidate accumulates reciprocal-rank contributions for one chunk.
type fusedCandidate struct {
	row   storage.SearchRow
	score float64
	order int // discovery order, for deterministic tie-breaking
}

// fuseRRF merges lexical and vector result lists with Reciprocal Rank
// Fusion. Candidates are identified by (file path, start line), so the same
// chunk surfaced by both sources accumulates both contributions. Ties in
// fused score resolve by discovery order: lexical hits in rank order first,
// then vector-only hits in rank order.
func fuseRRF(lexical, vector []storage.SearchRow, k float64, limit int) []types.SearchResult {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	candidates := make(map[string]*fusedCandidate)
	ordered := make([]*fusedCandidate, 0, len(lexical)+len(vector))

	add := func(row storage.SearchRow, rank int) {
		key := fuseKey(row)
		cand, ok := candidates[key]
		if !ok {
			cand = &fusedCandidate{row: row, order: len(ordered)}
			candidates[key] = cand
			ordered = append(ordered, cand)
		}
		cand.score += 1.0 / (k + float64(rank))
	}

	for i, row := range lexical {
		add(row, i+1)
	}
	for i, row := range vector {
		add(row, i+1)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].order < ordered[j].order
	})

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	results := make([]types.SearchResult, len(ordered))
	for i, cand := range ordered {
		results[i] = rowToResult(cand.row, cand.score, types.MethodHybrid)
	}
	return results
}

func fuseKey(row storage.SearchRow) string {
	return fmt.Sprintf("%s:%d", row.FilePath, row.StartLine)
}

// rowToResult converts a storage row into the external result shape.
func rowToResult(row storage.SearchRow, score float64, method types.SearchMethod) types.SearchResult {
	return types.SearchResult{
		Collection: row.Collection,
		FilePath:   row.FilePath,
		StartLine:  row.StartLine,
		EndLine:    row.EndLine,
		Language:   row.Language,
		Content:    row.Content,
		Score:      score,
		Method:     method,
	}
}
