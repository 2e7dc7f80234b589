package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codescout/codescout-mcp/internal/embedder"
	"github.com/codescout/codescout-mcp/internal/searcher"
	"github.com/codescout/codescout-mcp/internal/storage"
	"github.com/codescout/codescout-mcp/pkg/types"
)

func newSearchCmd() *cobra.Command {
	var mode string
	var limit int
	var showContent bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			query := strings.Join(args, " ")

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

			s := searcher.New(store, emb, logger)
			resp, err := s.Search(cmd.Context(), searcher.Request{
				Query:       query,
				Limit:       limit,
				Mode:        types.SearchMethod(mode),
				RRFConstant: cfg.Search.RRFConstant,
			})
			if err != nil {
				return err
			}

			if resp.TotalResults == 0 {
				fmt.Println("No results.")
				return nil
			}
			fmt.Printf("%d results (%s mode, %s)\n\n", resp.TotalResults, resp.Mode,
				resp.Duration.Round(time.Millisecond))
			for i, r := range resp.Results {
				fmt.Printf("%2d. %s:%d-%d  [%s]  score=%.4f\n",
					i+1, r.FilePath, r.StartLine, r.EndLine, r.Language, r.Score)
				if showContent {
					fmt.Println(indent(r.Content, "    "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "hybrid", "Search mode: hybrid, semantic or keyword")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results")
	cmd.Flags().BoolVar(&showContent, "content", false, "Print chunk contents")

	return cmd
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
