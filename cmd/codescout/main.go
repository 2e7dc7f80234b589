// Package main provides the entry point for the codescout CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/codescout/codescout-mcp/cmd/codescout/cmd"
)

func main() {
	// Pick up OPENAI_API_KEY and friends from a local .env if present
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
