package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescout/codescout-mcp/internal/storage"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Database:    %s\n", cfg.Database.Path)
			fmt.Printf("Documents:   %d\n", stats.Documents)
			fmt.Printf("Chunks:      %d\n", stats.Chunks)
			fmt.Printf("Vectors:     %d\n", stats.Vectors)
			if len(stats.Collections) > 0 {
				fmt.Printf("Collections: %s\n", strings.Join(stats.Collections, ", "))
			} else {
				fmt.Println("Collections: none (run 'codescout index' first)")
			}
			return nil
		},
	}
}
