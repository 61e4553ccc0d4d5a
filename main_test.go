package main

import (
	"strings"
	"testing"

	"github.com/jp-to-en/jp-to-en/settings"
)

func TestResolveAPIKey(t *testing.T) {
	t.Setenv(settings.HomeEnv, t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")

	if key, source := resolveAPIKey(""); key != "" || source != "" {
		t.Fatalf("resolveAPIKey() = %q, %q, want empty", key, source)
	}

	if _, err := settings.SetAPIKey("sk-stored"); err != nil {
		t.Fatalf("settings.SetAPIKey() error: %v", err)
	}
	if key, source := resolveAPIKey(""); key != "sk-stored" || source != "credentials file" {
		t.Fatalf("resolveAPIKey() = %q, %q, want stored key from credentials file", key, source)
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	if key, source := resolveAPIKey(""); key != "sk-env" || source != "environment" {
		t.Fatalf("resolveAPIKey() = %q, %q, want key from environment", key, source)
	}

	if key, source := resolveAPIKey("sk-flag"); key != "sk-flag" || source != "flag" {
		t.Fatalf("resolveAPIKey() = %q, %q, want key from flag", key, source)
	}
}

func TestErrMissingAPIKey(t *testing.T) {
	t.Setenv(settings.HomeEnv, t.TempDir())

	msg := errMissingAPIKey().Error()
	for _, want := range []string{
		"--api-key",
		"OPENAI_API_KEY",
		settings.CredentialsPath(),
		"https://platform.openai.com/api-keys",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("errMissingAPIKey() = %q, want it to mention %q", msg, want)
		}
	}
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "short passes through",
			in:   "hello",
			max:  10,
			want: "hello",
		},
		{
			name: "exact length passes through",
			in:   "hello",
			max:  5,
			want: "hello",
		},
		{
			name: "long ascii truncated",
			in:   "abcdefghij",
			max:  8,
			want: "abcde...",
		},
		{
			name: "multibyte counted by runes",
			in:   "日本語のコメントです",
			max:  8,
			want: "日本語のコ...",
		},
	}

	for _, tc := range tests {
		if got := truncateCell(tc.in, tc.max); got != tc.want {
			t.Fatalf("%s: truncateCell() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestColorizeDiffLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "hunk header is blue",
			in:   "@@ -1,2 +1,2 @@",
			want: colorBlue + "@@ -1,2 +1,2 @@" + colorReset,
		},
		{
			name: "addition is green",
			in:   "+# new comment",
			want: colorGreen + "+# new comment" + colorReset,
		},
		{
			name: "removal is red",
			in:   "-# 古いコメント",
			want: colorRed + "-# 古いコメント" + colorReset,
		},
		{
			name: "context stays plain",
			in:   " unchanged line",
			want: " unchanged line",
		},
	}

	for _, tc := range tests {
		if got := colorizeDiffLine(tc.in); got != tc.want {
			t.Fatalf("%s: colorizeDiffLine() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
