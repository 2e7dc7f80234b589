package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codescout/codescout-mcp/internal/embedder"
	"github.com/codescout/codescout-mcp/internal/indexer"
	"github.com/codescout/codescout-mcp/internal/storage"
)

func newIndexCmd() *cobra.Command {
	var collection string
	var includeTests bool
	var workers int

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a repository into the local database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			if collection == "" {
				collection = filepath.Base(absRoot)
			}

			store, err := storage.NewSQLiteStorage(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

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
					return err
				}
				defer emb.Close()
			}

			if workers <= 0 {
				workers = cfg.Indexing.Workers
			}
			idx := indexer.New(store, emb, logger)
			stats, err := idx.IndexRepo(cmd.Context(), collection, absRoot, &indexer.Config{
				Workers:      workers,
				IncludeTests: includeTests,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d files (%d chunks) into collection %q in %s\n",
				stats.FilesIndexed, stats.ChunksCreated, collection, stats.Duration.Round(time.Millisecond))
			if stats.FilesSkipped > 0 {
				fmt.Printf("Skipped %d unchanged files\n", stats.FilesSkipped)
			}
			if stats.FilesFailed > 0 {
				fmt.Printf("Failed %d files\n", stats.FilesFailed)
				for _, msg := range stats.ErrorMessages {
					fmt.Println(" ", msg)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Collection name (defaults to directory name)")
	cmd.Flags().BoolVar(&includeTests, "include-tests", true, "Index test files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (defaults to CPU count)")

	return cmd
}
