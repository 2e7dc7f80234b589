// Package chunker segments file content into line-range retrieval chunks.
//
// Files at or below the maximum chunk size (60 lines) become a single chunk.
// Larger files are split at per-language logical boundaries: top-level
// declarations at shallow indentation, Markdown headings, decorator and
// attribute lines. When a file exposes fewer than two boundaries, or its
// language has no registered patterns, the chunker falls back to fixed-size
// sliding windows with an 8-line overlap between neighbors. Boundary segments
// that still exceed 1.5x the maximum chunk size are sub-chunked with the same
// window, preserving absolute line offsets.
//
// Every chunk's content starts with a synthesized header line naming the
// source file and line range. The header is indexed together with the code,
// which makes file names searchable and results self-describing.
//
// The chunker is a pure transformer: path + content in, chunk list out.
package chunker
