// Package lockfile implements the translation cache file. It tracks MD5
// checksums of processed source files so repeated runs skip files whose
// content has not changed since their last translation.
//
// The cache lives in the working directory as .jp-to-en.lock by default.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default cache file name.
const LockFileName = ".jp-to-en.lock"

// Version is the cache file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile tracks per-file checksums of already-translated sources.
type LockFile struct {
	Version   int               `yaml:"version"`
	Checksums map[string]string `yaml:"checksums"` // file path -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a cache file from path.
// Returns an empty cache if the file doesn't exist.
func Load(path string) (*LockFile, error) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]string)
	}

	return lf, nil
}

// Save writes the cache file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("cache file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling cache file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the cache file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// fileKey normalizes a file path into a cache key.
func fileKey(path string) string {
	return filepath.ToSlash(path)
}

// Matches reports whether path was already processed with exactly this
// content.
func (lf *LockFile) Matches(path, content string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Checksums[fileKey(path)]
	if !ok {
		return false
	}
	return old == Hash(content)
}

// Record stores the checksum of a file after successful processing.
func (lf *LockFile) Record(path, content string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	lf.Checksums[fileKey(path)] = Hash(content)
}

// Forget removes the entry for a file.
func (lf *LockFile) Forget(path string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	delete(lf.Checksums, fileKey(path))
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Len returns the number of cached files.
func (lf *LockFile) Len() int {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	return len(lf.Checksums)
}

// Files returns the sorted list of cached file keys.
func (lf *LockFile) Files() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	files := make([]string, 0, len(lf.Checksums))
	for f := range lf.Checksums {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
