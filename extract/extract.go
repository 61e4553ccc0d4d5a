// Package extract locates comments in source files.
//
// Each supported language carries an explicit comment grammar: line
// comment markers, block comment delimiters, and string literal rules.
// A single-pass scanner walks the file content and returns the comment
// text spans, skipping anything that sits inside a string literal.
//
// The package also resolves CLI path arguments into the list of files to
// process, walking directories and skipping common non-source trees.
package extract

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Kind distinguishes line comments from block comments.
type Kind int

const (
	// LineComment runs from a marker to the end of the line.
	LineComment Kind = iota
	// BlockComment is delimited by open and close markers.
	BlockComment
)

func (k Kind) String() string {
	if k == BlockComment {
		return "block"
	}
	return "line"
}

// Span is one comment found in a file. Start and End are byte offsets of
// the comment text within the file content; the markers themselves sit
// outside the span, so replacing [Start,End) never touches a marker.
type Span struct {
	Path   string
	Start  int
	End    int
	Text   string
	Kind   Kind
	Line   int // 1-based line of the text start
	Column int // 0-based byte column of the text start
}

// stringRule describes a string literal form whose contents must not be
// scanned for comment markers.
type stringRule struct {
	open      string
	close     string
	escape    bool // backslash escapes the closing marker
	multiline bool // literal may span lines
}

// blockRule describes a block comment form. The first occurrence of the
// close marker terminates the block; nesting is not recognized.
type blockRule struct {
	open        string
	close       string
	atLineStart bool // open marker only counts at the start of a line
}

// Language is one entry of the comment grammar table.
type Language struct {
	Name        string
	Extensions  []string
	LineMarkers []string
	blocks      []blockRule
	stringRules []stringRule
}

// Markers returns a short human-readable description of the language's
// comment markers, for the languages listing.
func (l *Language) Markers() string {
	parts := append([]string(nil), l.LineMarkers...)
	for _, b := range l.blocks {
		parts = append(parts, b.open+" "+b.close)
	}
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// Grammar table
// ---------------------------------------------------------------------------

// languages is the comment grammar table. Within stringRules, a marker
// that is a prefix of another (" vs """) must come after the longer one.
var languages = []Language{
	{
		Name:        "Python",
		Extensions:  []string{".py", ".pyi"},
		LineMarkers: []string{"#"},
		blocks: []blockRule{
			{open: `"""`, close: `"""`},
			{open: "'''", close: "'''"},
		},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "Go",
		Extensions:  []string{".go"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "`", close: "`", multiline: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "JavaScript",
		Extensions:  []string{".js", ".jsx", ".mjs"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
			{open: "`", close: "`", escape: true, multiline: true},
		},
	},
	{
		Name:        "TypeScript",
		Extensions:  []string{".ts", ".tsx"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
			{open: "`", close: "`", escape: true, multiline: true},
		},
	},
	{
		Name:        "Java",
		Extensions:  []string{".java"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "C",
		Extensions:  []string{".c", ".h"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "C++",
		Extensions:  []string{".cc", ".cpp", ".cxx", ".hh", ".hpp"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "C#",
		Extensions:  []string{".cs"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "Rust",
		Extensions:  []string{".rs"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			// No single-quote rule: an apostrophe introduces a lifetime,
			// not a literal.
			{open: `"`, close: `"`, escape: true, multiline: true},
		},
	},
	{
		Name:        "Ruby",
		Extensions:  []string{".rb"},
		LineMarkers: []string{"#"},
		blocks:      []blockRule{{open: "=begin", close: "=end", atLineStart: true}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "Shell",
		Extensions:  []string{".sh", ".bash"},
		LineMarkers: []string{"#"},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true, multiline: true},
			{open: "'", close: "'", multiline: true},
		},
	},
	{
		Name:        "PHP",
		Extensions:  []string{".php"},
		LineMarkers: []string{"//", "#"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "Kotlin",
		Extensions:  []string{".kt"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"""`, close: `"""`, multiline: true},
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'", escape: true},
		},
	},
	{
		Name:        "Swift",
		Extensions:  []string{".swift"},
		LineMarkers: []string{"//"},
		blocks:      []blockRule{{open: "/*", close: "*/"}},
		stringRules: []stringRule{
			{open: `"""`, close: `"""`, escape: true, multiline: true},
			{open: `"`, close: `"`, escape: true},
		},
	},
	{
		Name:        "YAML",
		Extensions:  []string{".yaml", ".yml"},
		LineMarkers: []string{"#"},
		stringRules: []stringRule{
			{open: `"`, close: `"`, escape: true},
			{open: "'", close: "'"},
		},
	},
}

// extIndex maps a lowercased extension to its grammar table entry.
var extIndex = map[string]*Language{}

func init() {
	for i := range languages {
		for _, ext := range languages[i].Extensions {
			extIndex[ext] = &languages[i]
		}
	}
}

// ForPath returns the comment grammar for a file path, keyed on its
// lowercased extension. The second result is false for unsupported types.
func ForPath(path string) (*Language, bool) {
	l, ok := extIndex[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Languages returns the grammar table entries sorted by name.
func Languages() []Language {
	out := append([]Language(nil), languages...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SupportedExtensionsList returns a sorted list of recognized extensions.
func SupportedExtensionsList() []string {
	var exts []string
	for ext := range extIndex {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ---------------------------------------------------------------------------
// Source discovery
// ---------------------------------------------------------------------------

// skipDirs contains directory names to skip during source file scanning.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"__pycache__":  true,
	".tox":         true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".eggs":        true,
}

// FindSources resolves path arguments into a sorted, deduplicated list of
// regular files. File arguments are kept as given, even when their type is
// unsupported; directory arguments are walked when recursive is true, or
// listed one level deep otherwise. Arguments that do not exist are
// returned in missing.
func FindSources(paths []string, recursive bool) (files, missing []string) {
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			missing = append(missing, p)
			continue
		}

		switch {
		case info.Mode().IsRegular():
			add(p)

		case info.IsDir() && recursive:
			_ = filepath.Walk(p, func(path string, fi os.FileInfo, err error) error {
				if err != nil {
					return nil // skip unreadable entries
				}
				if fi.IsDir() {
					if skipDirs[fi.Name()] {
						return filepath.SkipDir
					}
					return nil
				}
				if fi.Mode().IsRegular() {
					add(path)
				}
				return nil
			})

		case info.IsDir():
			entries, err := os.ReadDir(p)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					add(filepath.Join(p, e.Name()))
				}
			}
		}
	}

	sort.Strings(files)
	return files, missing
}
