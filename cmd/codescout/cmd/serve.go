package cmd

import (
	"github.com/spf13/cobra"

	"github.com/codescout/codescout-mcp/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Starts the MCP server, reading protocol messages from stdin and writing
responses to stdout. All logging goes to stderr.

Register with an MCP client by pointing it at this command, for example:

  {"command": "codescout", "args": ["serve"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			server, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			return server.Serve(cmd.Context())
		},
	}
}
