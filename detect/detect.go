// Package detect classifies Japanese text inside comment strings.
//
// Classification is a fixed code-point range test over the Hiragana,
// Katakana, and CJK Unified Ideograph blocks. Comment text is split into
// sentence segments before classification so that surrounding English
// prose, sentence delimiters, and line structure survive translation
// untouched.
package detect

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultContextSize is the number of runes of surrounding text captured
// on each side of a detected span.
const DefaultContextSize = 50

// Unicode ranges for the Japanese scripts.
const (
	hiraganaLo = 0x3040
	hiraganaHi = 0x309F
	katakanaLo = 0x30A0
	katakanaHi = 0x30FF
	kanjiLo    = 0x4E00
	kanjiHi    = 0x9FAF
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Span is a run of Japanese text inside a larger string. Start and End
// are byte offsets of Text within the scanned string; Before and After
// hold up to the configured number of runes of surrounding text.
type Span struct {
	Text   string
	Start  int
	End    int
	Before string
	After  string
}

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// IsJapaneseRune reports whether r falls in the Hiragana, Katakana, or
// CJK ideograph ranges.
func IsJapaneseRune(r rune) bool {
	return (r >= hiraganaLo && r <= hiraganaHi) ||
		(r >= katakanaLo && r <= katakanaHi) ||
		(r >= kanjiLo && r <= kanjiHi)
}

// ContainsJapanese reports whether s contains at least one Japanese rune.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if IsJapaneseRune(r) {
			return true
		}
	}
	return false
}

// isJapaneseText decides whether a segment is predominantly Japanese.
// Short segments need a high density of Japanese runes; longer segments
// tolerate mixed identifiers and inline English.
func isJapaneseText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}

	japanese := 0
	total := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if IsJapaneseRune(r) {
			japanese++
		}
	}
	if total == 0 || japanese == 0 {
		return false
	}

	density := float64(japanese) / float64(total)
	if utf8.RuneCountInString(trimmed) < 15 {
		return density > 0.4
	}
	return density > 0.2
}

// isDelimiter reports whether r terminates a sentence segment.
// Sentence punctuation in either script, plus newlines.
func isDelimiter(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Span extraction
// ---------------------------------------------------------------------------

// Spans splits text into sentence segments and returns the segments that
// classify as Japanese, in order of appearance. Delimiters never appear
// inside a span, so punctuation and line breaks keep their positions when
// a span is later replaced. contextSize runes of surrounding text are
// captured on each side of every span.
func Spans(text string, contextSize int) []Span {
	var spans []Span

	start := -1 // byte offset of the current segment, -1 between segments
	flush := func(end int) {
		if start < 0 {
			return
		}
		seg := text[start:end]
		if isJapaneseText(seg) {
			spans = append(spans, Span{
				Text:   seg,
				Start:  start,
				End:    end,
				Before: contextBefore(text, start, contextSize),
				After:  contextAfter(text, end, contextSize),
			})
		}
		start = -1
	}

	for i, r := range text {
		if isDelimiter(r) {
			flush(i)
		} else if start < 0 {
			start = i
		}
	}
	flush(len(text))

	return spans
}

// contextBefore returns up to n runes of text ending at byte offset pos.
func contextBefore(text string, pos, n int) string {
	start := pos
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	return text[start:pos]
}

// contextAfter returns up to n runes of text starting at byte offset pos.
func contextAfter(text string, pos, n int) string {
	end := pos
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[pos:end]
}
