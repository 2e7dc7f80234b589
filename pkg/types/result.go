package types

// SearchMethod identifies the retrieval path that produced a result.
type SearchMethod string

const (
	MethodKeyword  SearchMethod = "keyword"
	MethodSemantic SearchMethod = "semantic"
	MethodHybrid   SearchMethod = "hybrid"
)

// SearchResult is the transient projection returned to callers. For keyword
// and semantic results Score is normalized into [0,1]; for hybrid results it
// is the raw RRF sum, unbounded but positive.
type SearchResult struct {
	Collection string
	FilePath   string // relative to the indexing root
	StartLine  int
	EndLine    int
	Language   string
	Content    string
	Score      float64
	Method     SearchMethod
}

// Validate checks that the result is well formed.
func (r *SearchResult) Validate() error {
	if r.FilePath == "" {
		return ErrMissingFilePath
	}
	if r.Content == "" {
		return ErrEmptyContent
	}
	if r.StartLine < 1 || r.EndLine < r.StartLine {
		return ErrInvalidLineRange
	}
	if r.Score < 0 {
		return ErrNegativeScore
	}
	switch r.Method {
	case MethodKeyword, MethodSemantic, MethodHybrid:
		return nil
	default:
		return ErrInvalidMethod
	}
}
