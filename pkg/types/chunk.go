package types

import "errors"

// ChunkType classifies chunk content as prose-style documentation or source code.
type ChunkType string

const (
	ChunkCode ChunkType = "code"
	ChunkDoc  ChunkType = "doc"
)

// Chunk is a contiguous line range extracted from one file. Line numbers are
// 1-based and inclusive. Content holds the literal source lines with a
// synthesized header line naming the file and range prepended, so the header
// is indexed and returned along with the code itself.
type Chunk struct {
	ID         int64
	DocumentID int64

	StartLine int
	EndLine   int

	Content  string
	Language string
	Type     ChunkType
}

// Validate checks structural invariants on the chunk.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	switch c.Type {
	case ChunkCode, ChunkDoc:
	default:
		return errors.New("invalid chunk type")
	}
	return nil
}

// Lines returns the number of source lines the chunk spans.
func (c *Chunk) Lines() int {
	return c.EndLine - c.StartLine + 1
}
