// Package scan inspects attached files and project roots to produce the
// file metadata the classifier consumes: detected language, effective line
// counts, and project type.
package scan

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo is the metadata collected for one attached file.
type FileInfo struct {
	// Path is the file path as given.
	Path string
	// Extension is the lowercased extension without the dot.
	Extension string
	// Language is the detected programming language, empty when unknown.
	Language string
	// SizeBytes is the on-disk size.
	SizeBytes int64
	// EffectiveLines counts non-blank, non-comment lines.
	EffectiveLines int
}

// ProjectType represents the primary language/framework of a project.
type ProjectType string

const (
	// ProjectGo indicates a Go project (has go.mod).
	ProjectGo ProjectType = "go"
	// ProjectNode indicates a Node.js/TypeScript project (has package.json).
	ProjectNode ProjectType = "node"
	// ProjectRust indicates a Rust project (has Cargo.toml).
	ProjectRust ProjectType = "rust"
	// ProjectPython indicates a Python project (pyproject.toml or requirements.txt).
	ProjectPython ProjectType = "python"
	// ProjectUnknown indicates the type could not be detected.
	ProjectUnknown ProjectType = "unknown"
)

// languageByExtension maps file extensions to language names.
var languageByExtension = map[string]string{
	"go":    "go",
	"py":    "python",
	"js":    "javascript",
	"jsx":   "javascript",
	"ts":    "typescript",
	"tsx":   "typescript",
	"rs":    "rust",
	"java":  "java",
	"kt":    "kotlin",
	"c":     "c",
	"h":     "c",
	"cc":    "cpp",
	"cpp":   "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"rb":    "ruby",
	"php":   "php",
	"swift": "swift",
	"sh":    "shell",
	"sql":   "sql",
	"yaml":  "yaml",
	"yml":   "yaml",
	"json":  "json",
	"md":    "markdown",
}

// lineCommentByLanguage maps languages to their line-comment prefix.
// Block comments are not tracked; a leading block marker still counts the
// line as a comment, which is close enough for complexity estimation.
var lineCommentByLanguage = map[string][]string{
	"go":         {"//"},
	"javascript": {"//"},
	"typescript": {"//"},
	"java":       {"//"},
	"kotlin":     {"//"},
	"c":          {"//", "/*", "*"},
	"cpp":        {"//", "/*", "*"},
	"csharp":     {"//"},
	"rust":       {"//"},
	"swift":      {"//"},
	"python":     {"#"},
	"ruby":       {"#"},
	"shell":      {"#"},
	"yaml":       {"#"},
	"php":        {"//", "#"},
	"sql":        {"--"},
}

// DetectLanguage returns the language for a path based on its extension.
func DetectLanguage(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return languageByExtension[ext]
}

// ScanFile collects metadata for one file. Missing files produce metadata
// with zero size and lines rather than an error: the classifier treats an
// unreadable attachment as a name-only signal.
func ScanFile(path string) FileInfo {
	info := FileInfo{
		Path:      path,
		Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Language:  DetectLanguage(path),
	}

	stat, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.SizeBytes = stat.Size()

	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer f.Close()

	prefixes := lineCommentByLanguage[info.Language]
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if isEffectiveLine(scanner.Text(), prefixes) {
			info.EffectiveLines++
		}
	}
	return info
}

// ScanFiles collects metadata for a list of files, preserving order.
func ScanFiles(paths []string) []FileInfo {
	infos := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, ScanFile(p))
	}
	return infos
}

// CountEffectiveLines counts non-blank, non-comment lines in raw content
// using the comment conventions of the given language.
func CountEffectiveLines(content, language string) int {
	prefixes := lineCommentByLanguage[language]
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if isEffectiveLine(line, prefixes) {
			count++
		}
	}
	return count
}

func isEffectiveLine(line string, commentPrefixes []string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	return true
}

// DetectProjectType analyzes a directory and returns the project type.
// It checks for common project files in order of specificity.
func DetectProjectType(root string) ProjectType {
	if root == "" {
		return ProjectUnknown
	}
	if fileExists(filepath.Join(root, "go.mod")) {
		return ProjectGo
	}
	if fileExists(filepath.Join(root, "Cargo.toml")) {
		return ProjectRust
	}
	if fileExists(filepath.Join(root, "pyproject.toml")) ||
		fileExists(filepath.Join(root, "setup.py")) ||
		fileExists(filepath.Join(root, "requirements.txt")) {
		return ProjectPython
	}
	if fileExists(filepath.Join(root, "package.json")) {
		return ProjectNode
	}
	return ProjectUnknown
}

// DominantLanguage returns the language with the most effective lines
// across the scanned files, empty when nothing was detected.
func DominantLanguage(infos []FileInfo) string {
	totals := make(map[string]int)
	for _, fi := range infos {
		if fi.Language == "" {
			continue
		}
		// Name-only attachments still vote, with weight 1.
		weight := fi.EffectiveLines
		if weight == 0 {
			weight = 1
		}
		totals[fi.Language] += weight
	}

	best, bestLines := "", 0
	for lang, lines := range totals {
		if lines > bestLines || (lines == bestLines && lang < best) {
			best, bestLines = lang, lines
		}
	}
	return best
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
