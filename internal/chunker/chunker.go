package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codescout/codescout-mcp/pkg/types"
)

const (
	// DefaultMaxLines is the maximum number of source lines per chunk.
	DefaultMaxLines = 60

	// MinBoundaryGap suppresses boundaries closer than this many lines to the
	// previously accepted one, preventing pathologically small chunks.
	MinBoundaryGap = 5

	// WindowOverlap is the number of lines shared between consecutive
	// sliding-window chunks.
	WindowOverlap = 8

	// oversizeFactor: a boundary-delimited segment longer than this multiple
	// of the max chunk size is sub-chunked with the sliding window.
	oversizeFactor = 1.5
)

// Chunker splits file content into ordered retrieval chunks. It is a pure
// transformer with no shared state; one instance can be used concurrently.
type Chunker struct {
	maxLines int
}

// New creates a Chunker with the default maximum chunk size.
func New() *Chunker {
	return &Chunker{maxLines: DefaultMaxLines}
}

// NewWithMaxLines creates a Chunker with a custom maximum chunk size.
// Values that would make the sliding window stall fall back to the default.
func NewWithMaxLines(maxLines int) *Chunker {
	if maxLines <= WindowOverlap {
		maxLines = DefaultMaxLines
	}
	return &Chunker{maxLines: maxLines}
}

// Split produces the ordered chunk list for one file. relPath must be the
// path relative to the indexing root; it is embedded in each chunk's header
// line and drives language detection. Chunks are returned in ascending
// start-line order and cover every line of the file, overlapping only at
// sliding-window boundaries.
//
// Empty or whitespace-only content yields no chunks.
func (c *Chunker) Split(relPath, content string) []*types.Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := splitLines(content)
	lang := DetectLanguage(relPath)
	total := len(lines)

	// Small files become exactly one chunk spanning the whole file.
	if total <= c.maxLines {
		return []*types.Chunk{c.newChunk(relPath, lang, lines, 1, total)}
	}

	bounds := c.findBoundaries(lines, lang)
	if len(bounds) < 2 {
		// No usable structure: fixed-size windows with overlap.
		return c.slidingWindow(relPath, lang, lines, 1, total)
	}

	// Lines before the first boundary form the leading segment.
	if bounds[0] != 1 {
		bounds = append([]int{1}, bounds...)
	}

	var chunks []*types.Chunk
	for i, start := range bounds {
		end := total
		if i+1 < len(bounds) {
			end = bounds[i+1] - 1
		}
		if float64(end-start+1) > oversizeFactor*float64(c.maxLines) {
			chunks = append(chunks, c.slidingWindow(relPath, lang, lines, start, end)...)
		} else {
			chunks = append(chunks, c.newChunk(relPath, lang, lines, start, end))
		}
	}
	return chunks
}

// findBoundaries returns the accepted boundary start lines (1-based) for the
// language's registered patterns. A candidate is accepted only when it is at
// least MinBoundaryGap lines past the previous accepted boundary; a
// declaration on line 1 is always accepted.
func (c *Chunker) findBoundaries(lines []string, lang string) []int {
	patterns := patternsFor(lang)
	if len(patterns) == 0 {
		return nil
	}

	var bounds []int
	last := 1
	for i, line := range lines {
		ln := i + 1
		if !matchesAny(patterns, line) {
			continue
		}
		if ln == 1 || ln-last >= MinBoundaryGap {
			bounds = append(bounds, ln)
			last = ln
		}
	}
	return bounds
}

// slidingWindow emits fixed-size windows over [start, end] with WindowOverlap
// lines shared between consecutive windows. The final window is clipped to
// end; it is never padded past the file.
func (c *Chunker) slidingWindow(relPath, lang string, lines []string, start, end int) []*types.Chunk {
	if end-start+1 <= c.maxLines {
		return []*types.Chunk{c.newChunk(relPath, lang, lines, start, end)}
	}

	step := c.maxLines - WindowOverlap
	var chunks []*types.Chunk
	for s := start; ; s += step {
		e := s + c.maxLines - 1
		if e >= end {
			chunks = append(chunks, c.newChunk(relPath, lang, lines, s, end))
			break
		}
		chunks = append(chunks, c.newChunk(relPath, lang, lines, s, e))
	}
	return chunks
}

// newChunk builds a chunk for lines[start-1:end] with the synthesized header
// line. The header is part of the stored content: it is indexed by the
// lexical search and shown in results.
func (c *Chunker) newChunk(relPath, lang string, lines []string, start, end int) *types.Chunk {
	header := fmt.Sprintf("File: %s (lines %d-%d)", relPath, start, end)
	body := strings.Join(lines[start-1:end], "\n")
	return &types.Chunk{
		StartLine: start,
		EndLine:   end,
		Content:   header + "\n" + body,
		Language:  lang,
		Type:      ChunkTypeFor(lang),
	}
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// splitLines splits content on newlines, dropping the phantom empty element a
// trailing newline produces so that "a\nb\n" counts as two lines.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
