// Package rewrite applies translated comment text back onto source files and
// renders unified diff previews of the result.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Replacement substitutes the byte range [Start, End) of the original
// content with Text.
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Apply returns original with every replacement substituted. Replacements may
// arrive in any order but must stay within bounds and must not overlap.
func Apply(original string, reps []Replacement) (string, error) {
	if len(reps) == 0 {
		return original, nil
	}

	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, r := range sorted {
		if r.Start < 0 || r.End < r.Start || r.End > len(original) {
			return "", fmt.Errorf("replacement [%d:%d) out of range for %d bytes", r.Start, r.End, len(original))
		}
		if i > 0 && sorted[i-1].End > r.Start {
			prev := sorted[i-1]
			return "", fmt.Errorf("replacement [%d:%d) overlaps [%d:%d)", r.Start, r.End, prev.Start, prev.End)
		}
	}

	var b strings.Builder
	b.Grow(len(original))
	last := 0
	for _, r := range sorted {
		b.WriteString(original[last:r.Start])
		b.WriteString(r.Text)
		last = r.End
	}
	b.WriteString(original[last:])
	return b.String(), nil
}

// UnifiedDiff renders a unified diff between the original and updated
// content of a file. The result is empty when nothing changed.
func UnifiedDiff(name, original, updated string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(updated),
		FromFile: "original/" + name,
		ToFile:   "translated/" + name,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// OutputPath maps path into outputDir, preserving its layout relative to the
// current working directory. Paths outside the working tree collapse to the
// bare file name. An empty outputDir leaves the path untouched.
func OutputPath(outputDir, path string) string {
	if outputDir == "" {
		return path
	}

	rel := filepath.Base(path)
	if wd, err := os.Getwd(); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(wd, abs); err == nil && !escapes(r) {
				rel = r
			}
		}
	}
	return filepath.Join(outputDir, rel)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(path, content string, mode os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), mode)
}
