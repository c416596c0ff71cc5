// Package sink writes inspection output, such as name listings, to a
// destination chosen by the caller.
package sink

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Sink receives output files. Paths are slash-separated and relative to the
// sink's root. Implementations are safe for concurrent use.
type Sink interface {
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Dir writes files below Root on the local filesystem. Every file is
// written to a temporary sibling first and renamed into place, so readers
// never observe a partial listing.
type Dir struct {
	Root string

	// Perm is the file permission. Zero means 0644.
	Perm os.FileMode

	// NoClobber makes WriteFile fail instead of replacing an existing file.
	NoClobber bool
}

// NewDir returns a Dir sink that replaces existing files.
func NewDir(root string) *Dir {
	return &Dir{Root: root, Perm: 0o644}
}

// WriteFile writes content to path below d.Root, creating directories as needed.
func (d *Dir) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := writeTemp(dir, content, cmpOr(d.Perm, 0o644))
	if err != nil {
		return err
	}
	// No-op after a successful rename.
	defer os.Remove(tmp)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.NoClobber {
		if err := os.Rename(tmp, full); err != nil {
			return fmt.Errorf("renaming into %s: %w", path, err)
		}
		return nil
	}
	// Link fails atomically if the target exists.
	if err := os.Link(tmp, full); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %q", path)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

// resolve joins path to the root and rejects results outside it.
func (d *Dir) resolve(path string) (string, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	full := filepath.Join(root, filepath.FromSlash(path))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root directory: %q", path)
	}
	return full, nil
}

func writeTemp(dir string, content []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".tyname-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	_, werr := f.Write(content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(name, perm)
	}
	if werr != nil {
		os.Remove(name)
		return "", fmt.Errorf("writing temp file: %w", werr)
	}
	return name, nil
}

func cmpOr(perm, def os.FileMode) os.FileMode {
	if perm == 0 {
		return def
	}
	return perm
}

// Memory keeps files in memory. It is used by tests and dry runs.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (m *Memory) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = slices.Clone(content)
	return nil
}

// Get returns a copy of the file at path and whether it exists.
func (m *Memory) Get(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	return slices.Clone(content), ok
}

// Paths returns the written paths in sorted order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files))
}

// Reset removes all files.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.files)
}

// ValidatePath reports whether path is acceptable to a Sink: relative,
// slash-separated, clean, and free of ".." components.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return errors.New("path is empty")
	case strings.HasPrefix(path, "/") || filepath.IsAbs(path) || hasDriveLetter(path):
		return errors.New("absolute paths not allowed")
	case strings.Contains(path, "\\"):
		return errors.New("path must use forward slashes")
	}
	for elem := range strings.SplitSeq(path, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}

func hasDriveLetter(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0] | 0x20
	return c >= 'a' && c <= 'z'
}
