package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("different")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(filepath.Join(t.TempDir(), LockFileName))
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if lf.Len() != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFileName)

	lf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.Record("src/main.py", "print('hi')\n")
	lf.Record("src/util.py", "def f(): pass\n")

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("cache file not created at %s", path)
	}

	lf2, err := Load(path)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if lf2.Len() != 2 {
		t.Errorf("Len = %d, want 2", lf2.Len())
	}
	if !lf2.Matches("src/main.py", "print('hi')\n") {
		t.Error("reloaded cache lost the main.py checksum")
	}
}

func TestMatches(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
	}

	if lf.Matches("src/main.py", "v1") {
		t.Error("unknown file should not match")
	}

	lf.Record("src/main.py", "v1")
	if !lf.Matches("src/main.py", "v1") {
		t.Error("recorded content should match")
	}
	if lf.Matches("src/main.py", "v2") {
		t.Error("changed content should not match")
	}

	// Windows-style separators normalize to the same key.
	if !lf.Matches(filepath.FromSlash("src/main.py"), "v1") {
		t.Error("normalized path should match")
	}
}

func TestForget(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
	}

	lf.Record("a.py", "x")
	lf.Record("b.py", "y")
	lf.Forget("a.py")

	if lf.Matches("a.py", "x") {
		t.Error("forgotten file still matches")
	}
	if got := lf.Files(); len(got) != 1 || got[0] != "b.py" {
		t.Errorf("Files() = %v, want [b.py]", got)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
	}
	if err := lf.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}
