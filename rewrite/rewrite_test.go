package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		original string
		reps     []Replacement
		want     string
	}{
		{
			name:     "no replacements",
			original: "abc",
			reps:     nil,
			want:     "abc",
		},
		{
			name:     "single multibyte span",
			original: "abc 変数 def",
			reps:     []Replacement{{Start: 4, End: 10, Text: "variable"}},
			want:     "abc variable def",
		},
		{
			name:     "unsorted input",
			original: "aa BB cc DD ee",
			reps: []Replacement{
				{Start: 9, End: 11, Text: "yy"},
				{Start: 3, End: 5, Text: "xx"},
			},
			want: "aa xx cc yy ee",
		},
		{
			name:     "adjacent spans",
			original: "abcd",
			reps: []Replacement{
				{Start: 1, End: 2, Text: "X"},
				{Start: 2, End: 3, Text: "Y"},
			},
			want: "aXYd",
		},
		{
			name:     "empty replacement deletes",
			original: "keep-drop-keep",
			reps:     []Replacement{{Start: 4, End: 9, Text: ""}},
			want:     "keep-keep",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.original, tc.reps)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Apply() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestApplyRejectsBadSpans(t *testing.T) {
	t.Parallel()

	if _, err := Apply("short", []Replacement{{Start: 0, End: 99, Text: "x"}}); err == nil {
		t.Fatal("out-of-range replacement did not error")
	}
	if _, err := Apply("short", []Replacement{{Start: 3, End: 2, Text: "x"}}); err == nil {
		t.Fatal("inverted replacement did not error")
	}
	if _, err := Apply("abcdef", []Replacement{
		{Start: 0, End: 3, Text: "x"},
		{Start: 2, End: 5, Text: "y"},
	}); err == nil {
		t.Fatal("overlapping replacements did not error")
	}
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	diff, err := UnifiedDiff("t.py", "one\ntwo\nthree\n", "one\n2\nthree\n")
	if err != nil {
		t.Fatalf("UnifiedDiff() error: %v", err)
	}
	for _, want := range []string{"--- original/t.py", "+++ translated/t.py", "-two", "+2"} {
		if !strings.Contains(diff, want) {
			t.Fatalf("diff missing %q:\n%s", want, diff)
		}
	}

	same, err := UnifiedDiff("t.py", "one\n", "one\n")
	if err != nil {
		t.Fatalf("UnifiedDiff() error: %v", err)
	}
	if same != "" {
		t.Fatalf("identical content produced a diff:\n%s", same)
	}
}

func TestOutputPath(t *testing.T) {
	tmp := t.TempDir()
	other := t.TempDir()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	if got := OutputPath("", "sub/file.py"); got != "sub/file.py" {
		t.Fatalf("empty outputDir: got %q, want untouched path", got)
	}

	got := OutputPath("out", filepath.Join(cwd, "sub", "file.py"))
	want := filepath.Join("out", "sub", "file.py")
	if got != want {
		t.Fatalf("OutputPath() = %q, want %q", got, want)
	}

	if got := OutputPath("out", "sub/file.py"); got != want {
		t.Fatalf("relative input: got %q, want %q", got, want)
	}

	outside := filepath.Join(other, "x.py")
	if got := OutputPath("out", outside); got != filepath.Join("out", "x.py") {
		t.Fatalf("outside path: got %q, want basename fallback", got)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "a", "b", "c.py")

	if err := WriteFile(path, "print('ok')\n", 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "print('ok')\n" {
		t.Fatalf("content = %q", data)
	}
}
