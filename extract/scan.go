package extract

import "strings"

// Scan walks content and returns the comments in file order. Offsets are
// byte positions into content; span text excludes the comment markers.
// Comment-like sequences inside string literals are skipped. A block
// comment closes at the first occurrence of its terminator; a block with
// no terminator extends to the end of the file.
func (l *Language) Scan(path, content string) []Span {
	var spans []Span

	line := 1
	lineStart := 0
	i := 0

	for i < len(content) {
		if content[i] == '\n' {
			line++
			i++
			lineStart = i
			continue
		}

		// Block markers take priority so that Python's """ wins over
		// its plain " string rule.
		if rule, ok := l.blockAt(content, i); ok {
			textStart := i + len(rule.open)
			var textEnd, next int
			if rel := strings.Index(content[textStart:], rule.close); rel < 0 {
				textEnd = len(content)
				next = len(content)
			} else {
				textEnd = textStart + rel
				next = textEnd + len(rule.close)
			}
			spans = append(spans, Span{
				Path:   path,
				Start:  textStart,
				End:    textEnd,
				Text:   content[textStart:textEnd],
				Kind:   BlockComment,
				Line:   line,
				Column: textStart - lineStart,
			})
			line, lineStart = advanceLines(content, i, next, line, lineStart)
			i = next
			continue
		}

		if m := l.lineMarkerAt(content, i); m != "" {
			textStart := i + len(m)
			for textStart < len(content) && (content[textStart] == ' ' || content[textStart] == '\t') {
				textStart++
			}
			scanEnd := textStart
			for scanEnd < len(content) && content[scanEnd] != '\n' {
				scanEnd++
			}
			textEnd := scanEnd
			// Keep CRLF endings out of the span so a replacement
			// preserves the file's line endings.
			if textEnd > textStart && content[textEnd-1] == '\r' {
				textEnd--
			}
			spans = append(spans, Span{
				Path:   path,
				Start:  textStart,
				End:    textEnd,
				Text:   content[textStart:textEnd],
				Kind:   LineComment,
				Line:   line,
				Column: textStart - lineStart,
			})
			i = scanEnd
			continue
		}

		if rule, ok := l.stringAt(content, i); ok {
			next := skipString(content, i+len(rule.open), rule)
			line, lineStart = advanceLines(content, i, next, line, lineStart)
			i = next
			continue
		}

		i++
	}

	return spans
}

// blockAt matches a block comment opener at byte offset i.
func (l *Language) blockAt(content string, i int) (blockRule, bool) {
	for _, b := range l.blocks {
		if !strings.HasPrefix(content[i:], b.open) {
			continue
		}
		if b.atLineStart && !atLineStart(content, i) {
			continue
		}
		return b, true
	}
	return blockRule{}, false
}

// lineMarkerAt returns the longest line comment marker at byte offset i,
// or "" when none matches.
func (l *Language) lineMarkerAt(content string, i int) string {
	best := ""
	for _, m := range l.LineMarkers {
		if strings.HasPrefix(content[i:], m) && len(m) > len(best) {
			best = m
		}
	}
	return best
}

// stringAt matches a string literal opener at byte offset i. Table order
// resolves prefixes: longer openers are listed before shorter ones.
func (l *Language) stringAt(content string, i int) (stringRule, bool) {
	for _, s := range l.stringRules {
		if strings.HasPrefix(content[i:], s.open) {
			return s, true
		}
	}
	return stringRule{}, false
}

// skipString returns the byte offset just past the string literal whose
// opening marker ends at start. Single-line literals left unterminated
// end at the newline; multiline literals run to the end of the file.
func skipString(content string, start int, rule stringRule) int {
	i := start
	for i < len(content) {
		c := content[i]
		if rule.escape && c == '\\' {
			i += 2
			continue
		}
		if !rule.multiline && c == '\n' {
			return i
		}
		if strings.HasPrefix(content[i:], rule.close) {
			return i + len(rule.close)
		}
		i++
	}
	return len(content)
}

func atLineStart(content string, i int) bool {
	return i == 0 || content[i-1] == '\n'
}

// advanceLines updates line bookkeeping after consuming content[from:to].
func advanceLines(content string, from, to, line, lineStart int) (int, int) {
	for j := from; j < to && j < len(content); j++ {
		if content[j] == '\n' {
			line++
			lineStart = j + 1
		}
	}
	return line, lineStart
}
