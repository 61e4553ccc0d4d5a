// Package process drives the translation pipeline: scan files for comments,
// detect Japanese segments, translate them, and write the results back.
package process

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jp-to-en/jp-to-en/detect"
	"github.com/jp-to-en/jp-to-en/extract"
	"github.com/jp-to-en/jp-to-en/lockfile"
	"github.com/jp-to-en/jp-to-en/rewrite"
	"github.com/jp-to-en/jp-to-en/translate"
)

// Translator turns one Japanese segment into English.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, error)
}

// defaultMemoSize bounds the in-memory translation memo when Options leaves
// MemoSize unset.
const defaultMemoSize = 1024

// Options configures a Processor.
type Options struct {
	// Translator handles the translation calls.
	Translator Translator
	// OutputDir mirrors translated files into a directory instead of
	// rewriting them in place. Empty means in-place.
	OutputDir string
	// DryRun disables all writes.
	DryRun bool
	// ContextSize is how many runes of surrounding comment text accompany
	// each segment.
	ContextSize int
	// Lock, when set, skips files whose content matches a cached checksum
	// and records each successfully processed file.
	Lock *lockfile.LockFile
	// MemoSize bounds the translation memo.
	MemoSize int
	// OnFileStart, when set, is called with each path before processing.
	OnFileStart func(path string)
	// OnLog, when set, receives debug-level progress messages.
	OnLog func(format string, args ...any)
}

// Processor runs the pipeline over a set of files. Identical segments are
// translated once and replayed from an LRU memo.
type Processor struct {
	opts Options
	memo *lru.Cache[string, string]
}

// Unit is one translated segment within a file. Start and End are byte
// offsets into the original file content; Line is 1-based.
type Unit struct {
	Text       string
	Translated string
	Start      int
	End        int
	Line       int
	Before     string
	After      string
}

// Result describes the outcome for one file.
type Result struct {
	Path               string
	CommentsFound      int
	JapaneseComments   int
	TranslatedComments int
	Units              []Unit
	HasChanges         bool
	OriginalContent    string
	UpdatedContent     string
	OutputPath         string
	Skipped            bool
	SkipReason         string
	Err                error
}

// Summary aggregates results across files.
type Summary struct {
	Processed          int
	Translated         int
	Skipped            int
	Errors             int
	CommentsFound      int
	JapaneseComments   int
	TranslatedComments int
}

// New returns a Processor for opts.
func New(opts Options) (*Processor, error) {
	if opts.Translator == nil {
		return nil, fmt.Errorf("process: Translator is required")
	}
	if opts.ContextSize <= 0 {
		opts.ContextSize = detect.DefaultContextSize
	}
	size := opts.MemoSize
	if size <= 0 {
		size = defaultMemoSize
	}
	memo, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Processor{opts: opts, memo: memo}, nil
}

// ProcessFiles runs the pipeline over paths in order. A canceled context
// stops before the next file; results collected so far are returned.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) (Summary, []Result) {
	var sum Summary
	results := make([]Result, 0, len(paths))

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		res := p.ProcessFile(ctx, path)
		results = append(results, res)

		switch {
		case res.Skipped:
			sum.Skipped++
		case res.Err != nil:
			sum.Processed++
			sum.Errors++
		default:
			sum.Processed++
			if res.HasChanges {
				sum.Translated++
			}
			sum.CommentsFound += res.CommentsFound
			sum.JapaneseComments += res.JapaneseComments
			sum.TranslatedComments += res.TranslatedComments
		}
	}
	return sum, results
}

// ProcessFile runs the pipeline for a single file. A translation failure
// abandons the whole file: nothing is written and the error is recorded on
// the Result so other files can still proceed.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	if p.opts.OnFileStart != nil {
		p.opts.OnFileStart(path)
	}

	language, ok := extract.ForPath(path)
	if !ok {
		res.Skipped = true
		res.SkipReason = "unsupported file type"
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	if !utf8.Valid(data) {
		res.Err = fmt.Errorf("%s: content is not valid UTF-8", path)
		return res
	}
	content := string(data)
	res.OriginalContent = content
	res.OutputPath = rewrite.OutputPath(p.opts.OutputDir, path)

	if p.opts.Lock != nil && p.opts.Lock.Matches(path, content) {
		res.Skipped = true
		res.SkipReason = "unchanged since last run"
		return res
	}

	comments := language.Scan(path, content)
	res.CommentsFound = len(comments)
	p.logf("%s: %d comments (%s)", path, len(comments), language.Name)

	var reps []rewrite.Replacement
	for _, comment := range comments {
		spans := detect.Spans(comment.Text, p.opts.ContextSize)
		if len(spans) == 0 {
			continue
		}
		res.JapaneseComments++

		for _, span := range spans {
			unit := Unit{
				Text:   span.Text,
				Start:  comment.Start + span.Start,
				End:    comment.Start + span.End,
				Line:   comment.Line + strings.Count(comment.Text[:span.Start], "\n"),
				Before: span.Before,
				After:  span.After,
			}

			translated, err := p.translateUnit(ctx, unit)
			if err != nil {
				res.Err = fmt.Errorf("%s:%d: %w", path, unit.Line, err)
				return res
			}
			unit.Translated = translated
			res.Units = append(res.Units, unit)

			if translated != "" && translated != unit.Text {
				reps = append(reps, rewrite.Replacement{Start: unit.Start, End: unit.End, Text: translated})
			}
		}
		res.TranslatedComments++
	}

	updated, err := rewrite.Apply(content, reps)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.UpdatedContent = updated
	res.HasChanges = updated != content

	if !p.opts.DryRun && res.HasChanges {
		mode := os.FileMode(0644)
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := rewrite.WriteFile(res.OutputPath, updated, mode); err != nil {
			res.Err = fmt.Errorf("%s: %w", res.OutputPath, err)
			return res
		}
		p.logf("%s: wrote %d replacements to %s", path, len(reps), res.OutputPath)
	}

	if p.opts.Lock != nil && !p.opts.DryRun {
		recorded := content
		if p.opts.OutputDir == "" && res.HasChanges {
			recorded = updated
		}
		p.opts.Lock.Record(path, recorded)
	}

	return res
}

func (p *Processor) translateUnit(ctx context.Context, unit Unit) (string, error) {
	if cached, ok := p.memo.Get(unit.Text); ok {
		p.logf("memo hit for %q", unit.Text)
		return cached, nil
	}

	translated, err := p.opts.Translator.Translate(ctx, translate.Request{
		Text:   unit.Text,
		Before: unit.Before,
		After:  unit.After,
	})
	if err != nil {
		return "", err
	}
	p.memo.Add(unit.Text, translated)
	return translated, nil
}

func (p *Processor) logf(format string, args ...any) {
	if p.opts.OnLog != nil {
		p.opts.OnLog(format, args...)
	}
}
