package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codescout/codescout-mcp/pkg/types"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "go file", path: "internal/storage/sqlite.go", want: "go"},
		{name: "typescript", path: "src/api/client.ts", want: "typescript"},
		{name: "tsx shares typescript", path: "src/App.tsx", want: "typescript"},
		{name: "python", path: "scripts/migrate.py", want: "python"},
		{name: "yaml", path: "deploy/values.yaml", want: "yaml"},
		{name: "yml alias", path: ".github/workflows/ci.yml", want: "yaml"},
		{name: "markdown", path: "docs/README.md", want: "markdown"},
		{name: "uppercase extension", path: "LEGACY.SQL", want: "sql"},
		{name: "unknown extension falls back to base name", path: "data/records.csv", want: "records.csv"},
		{name: "makefile", path: "Makefile", want: "makefile"},
		{name: "dockerfile", path: "build/Dockerfile", want: "dockerfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestSupportedFile(t *testing.T) {
	supported := []string{
		"main.go",
		"pkg/util/strings_test.go",
		"web/index.js",
		"notes.md",
		"schema.sql",
		"Makefile",
		"services/api/Dockerfile",
		"Gemfile",
	}
	for _, path := range supported {
		assert.True(t, SupportedFile(path), path)
	}

	unsupported := []string{
		"assets/logo.png",
		"bin/codescout",
		"vendor/archive.tar.gz",
		"report.csv",
		"LICENSE",
	}
	for _, path := range unsupported {
		assert.False(t, SupportedFile(path), path)
	}
}

func TestChunkTypeFor(t *testing.T) {
	assert.Equal(t, types.ChunkDoc, ChunkTypeFor("markdown"))
	assert.Equal(t, types.ChunkCode, ChunkTypeFor("go"))
	assert.Equal(t, types.ChunkCode, ChunkTypeFor("records.csv"))
}

func TestPatternsFor(t *testing.T) {
	assert.NotEmpty(t, patternsFor("go"))
	assert.NotEmpty(t, patternsFor("python"))
	assert.Nil(t, patternsFor("yaml"))
	assert.Nil(t, patternsFor(""))
}
