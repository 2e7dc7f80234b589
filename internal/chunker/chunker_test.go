package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout/codescout-mcp/pkg/types"
)

func TestSplit_SmallFile(t *testing.T) {
	c := New()
	content := "package main\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"

	chunks := c.Split("main.go", content)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 5, chunks[0].EndLine)
	assert.Equal(t, "go", chunks[0].Language)
	assert.Equal(t, types.ChunkCode, chunks[0].Type)
}

func TestSplit_Empty(t *testing.T) {
	c := New()
	assert.Empty(t, c.Split("a.go", ""))
	assert.Empty(t, c.Split("a.go", "   \n\t\n  "))
}

func TestSplit_Header(t *testing.T) {
	c := New()
	chunks := c.Split("internal/auth/login.go", "package auth\n")
	require.Len(t, chunks, 1)

	lines := strings.Split(chunks[0].Content, "\n")
	assert.Equal(t, "File: internal/auth/login.go (lines 1-1)", lines[0])
	assert.Equal(t, "package auth", lines[1])
}

// buildTSFile builds a TypeScript file with n top-level exported functions,
// each bodyLines long plus a blank separator.
func buildTSFile(n, bodyLines int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "export function handler%d(req: Request) {\n", i)
		for j := 0; j < bodyLines; j++ {
			fmt.Fprintf(&sb, "  doWork(%d);\n", j)
		}
		sb.WriteString("}\n\n")
	}
	return sb.String()
}

func TestSplit_BoundaryDetection(t *testing.T) {
	c := New()
	// 4 functions x 50 lines each = 200 lines, one boundary per function
	content := buildTSFile(4, 47)

	chunks := c.Split("api.ts", content)
	require.Len(t, chunks, 4)

	for i, chunk := range chunks {
		assert.Contains(t, chunk.Content, fmt.Sprintf("handler%d", i))
		assert.Equal(t, "typescript", chunk.Language)
	}

	// Chunks tile the file without gaps
	assert.Equal(t, 1, chunks[0].StartLine)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].EndLine+1, chunks[i].StartLine)
	}
}

func TestSplit_LeadingSegmentBeforeFirstBoundary(t *testing.T) {
	c := NewWithMaxLines(20)
	// 10 lines of imports, then functions: the prelude becomes its own chunk
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "import mod%d\n", i)
	}
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&sb, "def fn%d():\n", i)
		for j := 0; j < 15; j++ {
			sb.WriteString("    pass\n")
		}
	}

	chunks := c.Split("app.py", sb.String())
	require.NotEmpty(t, chunks)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Contains(t, chunks[0].Content, "import mod0")
	assert.NotContains(t, chunks[0].Content, "def fn0")
}

func TestSplit_SlidingWindowWithoutBoundaries(t *testing.T) {
	c := New()
	// 150 lines of a language without boundary patterns
	var sb strings.Builder
	for i := 1; i <= 150; i++ {
		fmt.Fprintf(&sb, "value_%d: %d\n", i, i)
	}

	chunks := c.Split("data.yaml", sb.String())
	require.Len(t, chunks, 3)

	// 60-line windows stepping by 52
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 60, chunks[0].EndLine)
	assert.Equal(t, 53, chunks[1].StartLine)
	assert.Equal(t, 112, chunks[1].EndLine)
	assert.Equal(t, 105, chunks[2].StartLine)
	assert.Equal(t, 150, chunks[2].EndLine)

	// Consecutive windows share WindowOverlap lines
	assert.Equal(t, WindowOverlap, chunks[0].EndLine-chunks[1].StartLine+1)
}

func TestSplit_OversizeSegmentSubChunked(t *testing.T) {
	c := New()
	// One 120-line function followed by a small one. 120 > 1.5*60, so the
	// first segment is windowed; the second stays whole.
	var sb strings.Builder
	sb.WriteString("func Big() {\n")
	for i := 0; i < 118; i++ {
		sb.WriteString("\tstep()\n")
	}
	sb.WriteString("}\n")
	sb.WriteString("func Small() {\n\treturn\n}\n")

	chunks := c.Split("big.go", sb.String())
	require.Len(t, chunks, 4)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 60, chunks[0].EndLine)
	assert.Equal(t, 53, chunks[1].StartLine)
	assert.Equal(t, 112, chunks[1].EndLine)
	assert.Equal(t, 105, chunks[2].StartLine)
	assert.Equal(t, 120, chunks[2].EndLine)
	assert.Equal(t, 121, chunks[3].StartLine)
	assert.Equal(t, 123, chunks[3].EndLine)
	assert.Contains(t, chunks[3].Content, "func Small()")
}

func TestSplit_MinBoundaryGap(t *testing.T) {
	c := NewWithMaxLines(10)
	// Tightly packed one-line functions: boundaries closer than
	// MinBoundaryGap lines to the previous accepted one are suppressed
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "func f%d() {}\n", i)
	}

	chunks := c.Split("tiny.go", sb.String())
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		if i+1 < len(chunks) {
			assert.GreaterOrEqual(t, chunk.EndLine-chunk.StartLine+1, MinBoundaryGap)
		}
	}
}

func TestSplit_MarkdownHeadings(t *testing.T) {
	c := NewWithMaxLines(20)
	var sb strings.Builder
	sb.WriteString("# Title\n\nIntro paragraph.\n\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&sb, "## Section %d\n", i)
		for j := 0; j < 8; j++ {
			sb.WriteString("Some prose here.\n")
		}
	}

	chunks := c.Split("README.md", sb.String())
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, types.ChunkDoc, chunk.Type)
		assert.Equal(t, "markdown", chunk.Language)
	}
}

func TestSplit_CoversEveryLine(t *testing.T) {
	c := New()
	content := buildTSFile(5, 80) // oversize segments, windowed

	chunks := c.Split("big.ts", content)
	require.NotEmpty(t, chunks)

	total := len(splitLines(content))
	covered := make([]bool, total+1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.StartLine, chunk.EndLine)
		for ln := chunk.StartLine; ln <= chunk.EndLine; ln++ {
			covered[ln] = true
		}
	}
	for ln := 1; ln <= total; ln++ {
		assert.True(t, covered[ln], "line %d not covered", ln)
	}
}

func TestSplit_ChunksOrdered(t *testing.T) {
	c := New()
	chunks := c.Split("big.ts", buildTSFile(6, 40))
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartLine, chunks[i-1].StartLine)
	}
}

func TestNewWithMaxLines_GuardsAgainstStall(t *testing.T) {
	c := NewWithMaxLines(WindowOverlap) // would step by zero
	assert.Equal(t, DefaultMaxLines, c.maxLines)

	c = NewWithMaxLines(-5)
	assert.Equal(t, DefaultMaxLines, c.maxLines)
}

func TestSplitLines(t *testing.T) {
	assert.Len(t, splitLines("a\nb\n"), 2)
	assert.Len(t, splitLines("a\nb"), 2)
	assert.Len(t, splitLines("a"), 1)
	assert.Len(t, splitLines("\n"), 1)
}
