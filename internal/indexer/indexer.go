package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codescout/codescout-mcp/internal/chunker"
	"github.com/codescout/codescout-mcp/internal/embedder"
	"github.com/codescout/codescout-mcp/internal/storage"
	"github.com/codescout/codescout-mcp/pkg/types"
)

// ErrIndexInProgress is returned when another process already holds the
// index lock for the same root path.
var ErrIndexInProgress = errors.New("an indexing run is already in progress for this path")

// Indexer coordinates the indexing pipeline: hash -> chunk -> store -> embed
type Indexer struct {
	chunker  *chunker.Chunker
	storage  storage.Storage
	embedder embedder.Embedder // nil disables vector indexing
	logger   *slog.Logger

	workers int
}

// Config contains configuration for an indexing run
type Config struct {
	Workers      int  // Number of concurrent workers (default: runtime.NumCPU())
	IncludeTests bool // Whether to index test files (default: true)
}

// Statistics describes the outcome of an indexing run
type Statistics struct {
	FilesIndexed  int
	FilesSkipped  int
	FilesFailed   int
	ChunksCreated int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Indexer. The embedder may be nil, in which case indexed
// documents get lexical postings only and search degrades to keyword mode.
func New(store storage.Storage, emb embedder.Embedder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		chunker:  chunker.New(),
		storage:  store,
		embedder: emb,
		logger:   logger,
		workers:  runtime.NumCPU(),
	}
}

// IndexRepo indexes every supported file under rootPath into the named
// collection. Files are processed concurrently; an exclusive file lock keeps
// concurrent processes from interleaving writes into the same index, and a
// run that finds the lock held fails fast with ErrIndexInProgress.
func (idx *Indexer) IndexRepo(ctx context.Context, collection, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{
			Workers:      runtime.NumCPU(),
			IncludeTests: true,
		}
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	idx.workers = config.Workers

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("failed to access root path: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", absRoot)
	}

	lock := NewIndexLock(absRoot)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrIndexInProgress, absRoot)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			idx.logger.Warn("failed to release index lock", "error", err)
		}
	}()

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	files, err := idx.discoverFiles(absRoot, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	idx.logger.Info("indexing started",
		"collection", collection,
		"root", absRoot,
		"files", len(files),
		"workers", idx.workers)

	if err := idx.indexFiles(ctx, collection, absRoot, files, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("indexing finished",
		"collection", collection,
		"indexed", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)
	return stats, nil
}

// discoverFiles walks rootPath collecting files the chunker understands.
func (idx *Indexer) discoverFiles(rootPath string, config *Config) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// The root itself may be hidden-named (~/.dotfiles); only
			// subdirectories are filtered
			if path == rootPath {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			switch info.Name() {
			case "vendor", "node_modules", "dist", "target", "__pycache__":
				return filepath.SkipDir
			}
			return nil
		}

		if !chunker.SupportedFile(path) {
			return nil
		}
		if !config.IncludeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		// Chunks carry a synthesized header; very large binaries aside,
		// files over 2MB are almost never worth line-level retrieval
		if info.Size() > 2<<20 {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// indexFiles processes files concurrently with error collection
func (idx *Indexer) indexFiles(ctx context.Context, collection, rootPath string, files []string, stats *Statistics) error {
	var (
		indexed int32
		skipped int32
		failed  int32
		chunks  int32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	var mu sync.Mutex // Protects stats.ErrorMessages

	for _, filePath := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			err := idx.indexFile(gctx, collection, rootPath, filePath, &indexed, &skipped, &chunks)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
				mu.Unlock()
				idx.logger.Warn("file indexing failed", "file", filePath, "error", err)
				// Other files keep going
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.ChunksCreated = int(chunks)
	return nil
}

// indexFile runs the full pipeline for one file
func (idx *Indexer) indexFile(ctx context.Context, collection, rootPath, filePath string,
	indexed, skipped, chunkCount *int32) error {

	relPath, err := filepath.Rel(rootPath, filePath)
	if err != nil {
		return err
	}
	relPath = filepath.ToSlash(relPath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	hash := HashContent(content)

	changed, err := idx.storage.HasChanged(ctx, collection, relPath, hash)
	if err != nil {
		return err
	}
	if !changed {
		atomic.AddInt32(skipped, 1)
		return nil
	}

	chunks := idx.chunker.Split(relPath, string(content))
	if len(chunks) == 0 {
		// Empty or whitespace-only file: drop any stale record
		atomic.AddInt32(skipped, 1)
		return idx.storage.DeleteDocument(ctx, collection, relPath)
	}

	doc := &storage.Document{
		Collection:  collection,
		FilePath:    relPath,
		ContentHash: hash,
		Language:    chunker.DetectLanguage(relPath),
	}
	if err := idx.storage.IndexDocument(ctx, doc, chunks); err != nil {
		return err
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(chunkCount, int32(len(chunks)))

	// Embedding runs after the lexical index is committed. A provider
	// failure leaves the document keyword-searchable rather than aborting
	// the run.
	if idx.embedder != nil {
		if err := idx.embedChunks(ctx, collection, relPath, chunks); err != nil {
			idx.logger.Warn("embedding failed, document is keyword-only",
				"file", relPath, "error", err)
		}
	}
	return nil
}

// embedChunks generates and stores vectors for a document's chunks,
// batching to respect provider limits.
func (idx *Indexer) embedChunks(ctx context.Context, collection, relPath string, chunks []*types.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedder.MaxBatchSize {
		end := start + embedder.MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		embeddings, err := idx.embedder.GenerateBatch(ctx, texts[start:end])
		if err != nil {
			return err
		}
		for _, emb := range embeddings {
			vectors = append(vectors, emb.Vector)
		}
	}

	return idx.storage.StoreVectors(ctx, collection, relPath, vectors,
		idx.embedder.Provider(), idx.embedder.Model())
}

// HashContent returns the hex-encoded SHA-256 digest of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
