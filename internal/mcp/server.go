package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codescout/codescout-mcp/internal/config"
	"github.com/codescout/codescout-mcp/internal/embedder"
	"github.com/codescout/codescout-mcp/internal/indexer"
	"github.com/codescout/codescout-mcp/internal/searcher"
	"github.com/codescout/codescout-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "codescout-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	cfg      *config.Config
	logger   *slog.Logger
}

// NewServer builds the full engine from configuration: storage, the
// configured embedding provider, indexer and searcher, then registers the
// MCP tools.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var emb embedder.Embedder
	if cfg.Embeddings.Provider != "" {
		emb, err = embedder.New(embedder.Config{
			Provider:  cfg.Embeddings.Provider,
			APIKey:    cfg.Embeddings.APIKey,
			BaseURL:   cfg.Embeddings.BaseURL,
			Model:     cfg.Embeddings.Model,
			Dimension: cfg.Embeddings.Dimension,
			CacheSize: cfg.Embeddings.CacheSize,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		logger.Info("embedding provider configured",
			"provider", emb.Provider(), "model", emb.Model(), "dimension", emb.Dimension())
	} else {
		logger.Info("no embedding provider configured, search is keyword-only")
	}

	return newServerWithDeps(cfg, logger, store, emb), nil
}

// newServerWithDeps wires an already-constructed stack into an MCP server.
func newServerWithDeps(cfg *config.Config, logger *slog.Logger, store storage.Storage, emb embedder.Embedder) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		storage:  store,
		indexer:  indexer.New(store, emb, logger),
		searcher: searcher.New(store, emb, logger),
		cfg:      cfg,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	s.logger.Info("mcp server listening on stdio", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexRepoTool(), s.handleIndexRepo)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
}

// cacheTTL converts the configured TTL to a duration for search requests.
func (s *Server) cacheTTL() time.Duration {
	hours := s.cfg.Search.CacheTTLHours
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}
