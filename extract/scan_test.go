package extract

import (
	"reflect"
	"testing"
)

func lang(t *testing.T, path string) *Language {
	t.Helper()
	l, ok := ForPath(path)
	if !ok {
		t.Fatalf("ForPath(%q): unsupported", path)
	}
	return l
}

func checkSpans(t *testing.T, name, content string, got, want []Span) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%s: Scan() = %#v, want %#v", name, got, want)
	}
	for _, s := range got {
		if content[s.Start:s.End] != s.Text {
			t.Fatalf("%s: offsets [%d,%d) select %q, want %q",
				name, s.Start, s.End, content[s.Start:s.End], s.Text)
		}
	}
}

func TestScanPython(t *testing.T) {
	l := lang(t, "t.py")

	tests := []struct {
		name    string
		content string
		want    []Span
	}{
		{
			name:    "trailing line comment",
			content: "x = 1  # 変数\n",
			want:    []Span{{Start: 9, End: 15, Text: "変数", Kind: LineComment, Line: 1, Column: 9}},
		},
		{
			name:    "hash inside string is not a comment",
			content: "s = \"# not a comment\"  # 本物\n",
			want:    []Span{{Start: 25, End: 31, Text: "本物", Kind: LineComment, Line: 1, Column: 25}},
		},
		{
			name:    "docstring",
			content: "def f():\n    \"\"\"こんにちは\"\"\"\n",
			want:    []Span{{Start: 16, End: 31, Text: "こんにちは", Kind: BlockComment, Line: 2, Column: 7}},
		},
		{
			name:    "unterminated docstring runs to end of file",
			content: "\"\"\"開始",
			want:    []Span{{Start: 3, End: 9, Text: "開始", Kind: BlockComment, Line: 1, Column: 3}},
		},
		{
			name:    "no comments",
			content: "x = 1\n",
			want:    nil,
		},
		{
			name:    "hash inside docstring stays part of the block",
			content: "\"\"\"has # inside\"\"\"",
			want:    []Span{{Start: 3, End: 15, Text: "has # inside", Kind: BlockComment, Line: 1, Column: 3}},
		},
		{
			name:    "crlf ending stays out of the span",
			content: "# コメント\r\nx = 1\r\n",
			want:    []Span{{Start: 2, End: 14, Text: "コメント", Kind: LineComment, Line: 1, Column: 2}},
		},
		{
			name:    "single-quoted docstring",
			content: "'''doc'''",
			want:    []Span{{Start: 3, End: 6, Text: "doc", Kind: BlockComment, Line: 1, Column: 3}},
		},
		{
			name:    "empty comment text",
			content: "#\n# text\n",
			want: []Span{
				{Start: 1, End: 1, Text: "", Kind: LineComment, Line: 1, Column: 1},
				{Start: 4, End: 8, Text: "text", Kind: LineComment, Line: 2, Column: 2},
			},
		},
		{
			name:    "unterminated string ends at the newline",
			content: "s = 'unterminated\n# コメント\n",
			want:    []Span{{Start: 20, End: 32, Text: "コメント", Kind: LineComment, Line: 2, Column: 2}},
		},
	}

	for _, tc := range tests {
		checkSpans(t, tc.name, tc.content, l.Scan("", tc.content), tc.want)
	}
}

func TestScanGo(t *testing.T) {
	l := lang(t, "t.go")

	tests := []struct {
		name    string
		content string
		want    []Span
	}{
		{
			name:    "line comment",
			content: "// コメント\nfunc main() {}\n",
			want:    []Span{{Start: 3, End: 15, Text: "コメント", Kind: LineComment, Line: 1, Column: 3}},
		},
		{
			name:    "raw string hides markers",
			content: "s := `// なか`\n// そと\n",
			want:    []Span{{Start: 20, End: 26, Text: "そと", Kind: LineComment, Line: 2, Column: 3}},
		},
		{
			name:    "block comment",
			content: "/* ブロック */",
			want:    []Span{{Start: 2, End: 16, Text: " ブロック ", Kind: BlockComment, Line: 1, Column: 2}},
		},
		{
			name:    "rune literal with a quote",
			content: "c := '\"'\n// コメント\n",
			want:    []Span{{Start: 12, End: 24, Text: "コメント", Kind: LineComment, Line: 2, Column: 3}},
		},
	}

	for _, tc := range tests {
		checkSpans(t, tc.name, tc.content, l.Scan("", tc.content), tc.want)
	}
}

func TestScanRuby(t *testing.T) {
	l := lang(t, "t.rb")

	content := "=begin\nコメント\n=end\nx = 1\n"
	want := []Span{{Start: 6, End: 20, Text: "\nコメント\n", Kind: BlockComment, Line: 1, Column: 6}}
	checkSpans(t, "block at line start", content, l.Scan("", content), want)

	midline := "x=begin\ny\n"
	if got := l.Scan("", midline); got != nil {
		t.Fatalf("mid-line =begin: Scan() = %#v, want nil", got)
	}
}

func TestScanShell(t *testing.T) {
	l := lang(t, "t.sh")

	content := "echo '#'\n# 実行\n"
	want := []Span{{Start: 11, End: 17, Text: "実行", Kind: LineComment, Line: 2, Column: 2}}
	checkSpans(t, "single-quoted hash", content, l.Scan("", content), want)
}

func TestScanPHP(t *testing.T) {
	l := lang(t, "t.php")

	content := "<?php\n# ハッシュ\n// スラッシュ\n"
	want := []Span{
		{Start: 8, End: 20, Text: "ハッシュ", Kind: LineComment, Line: 2, Column: 2},
		{Start: 24, End: 39, Text: "スラッシュ", Kind: LineComment, Line: 3, Column: 3},
	}
	checkSpans(t, "both marker styles", content, l.Scan("", content), want)
}

func TestScanMultilineBlockLines(t *testing.T) {
	l := lang(t, "t.c")

	// A comment after a multiline block must carry the right line number.
	content := "/* 一\n二 */\nint x; // 三\n"
	got := l.Scan("", content)
	if len(got) != 2 {
		t.Fatalf("Scan() returned %d spans, want 2", len(got))
	}
	if got[0].Kind != BlockComment || got[0].Line != 1 {
		t.Fatalf("block span = %#v, want block on line 1", got[0])
	}
	if got[1].Kind != LineComment || got[1].Line != 3 {
		t.Fatalf("line span = %#v, want line comment on line 3", got[1])
	}
}

func TestScanStringsHideMarkers(t *testing.T) {
	for _, l := range languages {
		for _, rule := range l.stringRules {
			marker := l.LineMarkers[0]
			content := rule.open + marker + " x" + rule.close + "\n"
			if got := l.Scan("", content); got != nil {
				t.Errorf("%s: %q: Scan() = %#v, want nil", l.Name, content, got)
			}
		}
	}
}

func TestScanUnterminatedBlockReachesEOF(t *testing.T) {
	for _, l := range languages {
		for _, b := range l.blocks {
			content := b.open + "中"
			got := l.Scan("", content)
			if len(got) != 1 {
				t.Errorf("%s: %q: Scan() returned %d spans, want 1", l.Name, content, len(got))
				continue
			}
			if got[0].Text != "中" || got[0].End != len(content) {
				t.Errorf("%s: span = %#v, want %q ending at %d", l.Name, got[0], "中", len(content))
			}
		}
	}
}
