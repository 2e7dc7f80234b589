package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validChunk() *Chunk {
	return &Chunk{
		StartLine: 1,
		EndLine:   42,
		Content:   "File: main.go (lines 1-42)\npackage main\n",
		Language:  "go",
		Type:      ChunkCode,
	}
}

func TestChunkValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Chunk)
		wantErr bool
	}{
		{name: "valid code chunk", mutate: func(c *Chunk) {}, wantErr: false},
		{name: "valid doc chunk", mutate: func(c *Chunk) { c.Type = ChunkDoc }, wantErr: false},
		{name: "empty content", mutate: func(c *Chunk) { c.Content = "" }, wantErr: true},
		{name: "zero start line", mutate: func(c *Chunk) { c.StartLine = 0 }, wantErr: true},
		{name: "inverted range", mutate: func(c *Chunk) { c.StartLine = 50 }, wantErr: true},
		{name: "unknown type", mutate: func(c *Chunk) { c.Type = "binary" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validChunk()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkLines(t *testing.T) {
	c := &Chunk{StartLine: 10, EndLine: 10}
	assert.Equal(t, 1, c.Lines())

	c = &Chunk{StartLine: 1, EndLine: 60}
	assert.Equal(t, 60, c.Lines())
}

func TestSearchResultValidate(t *testing.T) {
	valid := SearchResult{
		Collection: "repo",
		FilePath:   "internal/server.go",
		StartLine:  1,
		EndLine:    30,
		Content:    "func main() {}",
		Score:      0.8,
		Method:     MethodHybrid,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.FilePath = ""
	assert.ErrorIs(t, missing.Validate(), ErrMissingFilePath)

	badRange := valid
	badRange.EndLine = 0
	assert.ErrorIs(t, badRange.Validate(), ErrInvalidLineRange)

	negative := valid
	negative.Score = -0.1
	assert.ErrorIs(t, negative.Validate(), ErrNegativeScore)

	badMethod := valid
	badMethod.Method = "grep"
	assert.ErrorIs(t, badMethod.Validate(), ErrInvalidMethod)
}
