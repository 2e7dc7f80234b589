package chunker

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codescout/codescout-mcp/pkg/types"
)

// languageByExt maps file extensions to language tags. Unknown extensions
// fall back to the lowercased file name in DetectLanguage.
var languageByExt = map[string]string{
	".go":    "go",
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".sql":   "sql",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".json":  "json",
	".md":    "markdown",
	".mdx":   "markdown",
	".rst":   "markdown",
	".txt":   "text",
}

// docLanguages marks languages whose chunks are classified as documentation
// rather than code.
var docLanguages = map[string]bool{
	"markdown": true,
}

// boundaryPatterns lists per-language regexes matching lines that start a
// top-level logical unit. Declarations indented more than two columns are
// deliberately not matched so nested definitions never split a chunk.
var boundaryPatterns = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`^ {0,2}func\s`),
		regexp.MustCompile(`^ {0,2}type\s+\w+\s+(struct|interface)\b`),
	},
	"typescript": {
		regexp.MustCompile(`^ {0,2}(export\s+)?(default\s+)?(async\s+)?function\s`),
		regexp.MustCompile(`^ {0,2}(export\s+)?(abstract\s+)?class\s`),
		regexp.MustCompile(`^ {0,2}(export\s+)?interface\s`),
		regexp.MustCompile(`^ {0,2}(export\s+)?(const|let)\s+\w+\s*=\s*(async\s*)?\(`),
	},
	"javascript": {
		regexp.MustCompile(`^ {0,2}(export\s+)?(default\s+)?(async\s+)?function\s`),
		regexp.MustCompile(`^ {0,2}(export\s+)?class\s`),
		regexp.MustCompile(`^ {0,2}(export\s+)?(const|let)\s+\w+\s*=\s*(async\s*)?\(`),
	},
	"python": {
		regexp.MustCompile(`^ {0,2}(async\s+)?def\s`),
		regexp.MustCompile(`^ {0,2}class\s`),
		regexp.MustCompile(`^ {0,2}@\w`),
	},
	"rust": {
		regexp.MustCompile(`^ {0,2}(pub\s+)?(async\s+)?fn\s`),
		regexp.MustCompile(`^ {0,2}(pub\s+)?(struct|enum|trait|impl)\b`),
		regexp.MustCompile(`^ {0,2}#\[`),
	},
	"java": {
		regexp.MustCompile(`^ {0,2}(public\s+|private\s+|protected\s+)?(static\s+)?(final\s+)?(class|interface|enum|record)\s`),
		regexp.MustCompile(`^ {0,2}@\w`),
	},
	"ruby": {
		regexp.MustCompile(`^ {0,2}def\s`),
		regexp.MustCompile(`^ {0,2}(class|module)\s`),
	},
	"markdown": {
		regexp.MustCompile(`^#{1,6}\s`),
	},
}

// DetectLanguage resolves a language tag from the file extension. Files with
// no registered extension use their lowercased base name, so "Makefile" and
// "Dockerfile" still get a stable, searchable tag.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return strings.ToLower(filepath.Base(path))
}

// indexableBasenames are extensionless files worth indexing by name.
var indexableBasenames = map[string]bool{
	"makefile":   true,
	"dockerfile": true,
	"rakefile":   true,
	"gemfile":    true,
	"justfile":   true,
}

// SupportedFile reports whether path is a text file the indexer should feed
// through the chunker, judged by extension or well-known base name.
func SupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := languageByExt[ext]; ok {
		return true
	}
	return indexableBasenames[strings.ToLower(filepath.Base(path))]
}

// ChunkTypeFor classifies a language as documentation or code.
func ChunkTypeFor(lang string) types.ChunkType {
	if docLanguages[lang] {
		return types.ChunkDoc
	}
	return types.ChunkCode
}

// patternsFor returns the boundary patterns registered for a language, or nil
// when the language has none and the chunker must use the sliding window.
func patternsFor(lang string) []*regexp.Regexp {
	return boundaryPatterns[lang]
}
