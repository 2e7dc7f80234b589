package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codescout/codescout-mcp/internal/embedder"
	"github.com/codescout/codescout-mcp/internal/storage"
	"github.com/codescout/codescout-mcp/pkg/types"
)

// Common errors
var (
	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrNoEmbedder = errors.New("semantic search requires an embedder")
)

const (
	// DefaultLimit bounds results when the caller doesn't specify
	DefaultLimit = 10
	// MaxLimit caps how many results a single search may return
	MaxLimit = 100
	// candidateFactor widens per-source candidate lists before fusion so
	// a chunk ranked just past the limit in both sources can still win
	candidateFactor = 2
)

// Request contains parameters for a search operation
type Request struct {
	Query       string
	Limit       int
	Mode        types.SearchMethod
	UseCache    bool
	CacheTTL    time.Duration
	RRFConstant float64
}

// Response contains search results and metadata
type Response struct {
	Results      []types.SearchResult
	TotalResults int
	Mode         types.SearchMethod
	Duration     time.Duration
	CacheHit     bool
	LexicalHits  int
	VectorHits   int
}

// cacheEntry is a cached response with its expiration time
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher coordinates lexical and semantic search over the index.
// The embedder may be nil; hybrid and semantic requests then degrade to
// keyword search.
type Searcher struct {
	storage  storage.Storage
	embedder embedder.Embedder
	logger   *slog.Logger
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
}

// New creates a Searcher.
func New(store storage.Storage, emb embedder.Embedder, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// Cannot fail with a positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Searcher{
		storage:  store,
		embedder: emb,
		logger:   logger,
		cache:    cache,
	}
}

// Search runs a query in the requested mode.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	var response *Response
	var err error
	switch req.Mode {
	case types.MethodHybrid:
		response, err = s.hybridSearch(ctx, req)
	case types.MethodSemantic:
		response, err = s.semanticSearch(ctx, req)
	case types.MethodKeyword:
		response, err = s.keywordSearch(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidMethod, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	response.Duration = time.Since(startTime)

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}
	return response, nil
}

// sourceResult carries one source's rows out of its goroutine
type sourceResult struct {
	rows []storage.SearchRow
	err  error
}

// hybridSearch fuses lexical and vector rankings with RRF. Without an
// embedder, or when query embedding fails, it degrades to keyword search so
// a dead provider never makes the index unsearchable.
func (s *Searcher) hybridSearch(ctx context.Context, req Request) (*Response, error) {
	if s.embedder == nil {
		return s.keywordSearch(ctx, req)
	}

	fetch := req.Limit * candidateFactor
	lexChan := make(chan sourceResult, 1)
	vecChan := make(chan sourceResult, 1)

	go func() {
		rows, err := s.storage.SearchText(ctx, req.Query, fetch)
		select {
		case lexChan <- sourceResult{rows: rows, err: err}:
		case <-ctx.Done():
		}
	}()
	go func() {
		var res sourceResult
		emb, err := s.embedder.GenerateEmbedding(ctx, req.Query)
		if err != nil {
			res.err = fmt.Errorf("failed to embed query: %w", err)
		} else {
			res.rows, res.err = s.storage.SearchVector(ctx, emb.Vector, fetch)
		}
		select {
		case vecChan <- res:
		case <-ctx.Done():
		}
	}()

	var lexical, vector sourceResult
	var lexDone, vecDone bool
	for !lexDone || !vecDone {
		select {
		case lexical = <-lexChan:
			lexDone = true
		case vector = <-vecChan:
			vecDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lexical.err != nil {
		return nil, lexical.err
	}
	if vector.err != nil {
		s.logger.Warn("semantic leg failed, returning keyword results",
			"query", req.Query, "error", vector.err)
		return s.keywordResponse(lexical.rows, req.Limit), nil
	}

	results := fuseRRF(lexical.rows, vector.rows, req.RRFConstant, req.Limit)
	return &Response{
		Results:      results,
		TotalResults: len(results),
		Mode:         types.MethodHybrid,
		LexicalHits:  len(lexical.rows),
		VectorHits:   len(vector.rows),
	}, nil
}

// semanticSearch ranks purely by cosine similarity to the query embedding.
func (s *Searcher) semanticSearch(ctx context.Context, req Request) (*Response, error) {
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.storage.SearchVector(ctx, emb.Vector, req.Limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, len(rows))
	for i, row := range rows {
		results[i] = rowToResult(row, row.Score, types.MethodSemantic)
	}
	return &Response{
		Results:      results,
		TotalResults: len(results),
		Mode:         types.MethodSemantic,
		VectorHits:   len(rows),
	}, nil
}

// keywordSearch ranks purely by the lexical index.
func (s *Searcher) keywordSearch(ctx context.Context, req Request) (*Response, error) {
	rows, err := s.storage.SearchText(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	return s.keywordResponse(rows, req.Limit), nil
}

func (s *Searcher) keywordResponse(rows []storage.SearchRow, limit int) *Response {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	results := make([]types.SearchResult, len(rows))
	for i, row := range rows {
		results[i] = rowToResult(row, row.Score, types.MethodKeyword)
	}
	return &Response{
		Results:      results,
		TotalResults: len(results),
		Mode:         types.MethodKeyword,
		LexicalHits:  len(rows),
	}
}

// validateRequest normalizes the request in place
func (s *Searcher) validateRequest(req *Request) error {
	if req.Query == "" {
		return ErrEmptyQuery
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.Mode == "" {
		req.Mode = types.MethodHybrid
	}
	if req.RRFConstant == 0 {
		req.RRFConstant = DefaultRRFConstant
	}
	if req.CacheTTL == 0 {
		req.CacheTTL = time.Hour
	}
	return nil
}

func computeQueryHash(req Request) [32]byte {
	key := fmt.Sprintf("%s|%d|%s|%g", req.Mode, req.Limit, req.Query, req.RRFConstant)
	return sha256.Sum256([]byte(key))
}

// checkCache returns a copy of a live cached response, or nil on miss.
func (s *Searcher) checkCache(req Request) *Response {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}
	response := copyResponse(entry.response)
	s.cacheMu.RUnlock()
	return response
}

func (s *Searcher) storeInCache(req Request, response *Response) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// copyResponse deep-copies a response so cached entries never alias caller
// slices.
func copyResponse(src *Response) *Response {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Results = make([]types.SearchResult, len(src.Results))
	copy(dst.Results, src.Results)
	return &dst
}
