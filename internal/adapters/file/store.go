package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/aretw0/swallow/pkg/domain"
)

// Store persists workspace manifests on the local filesystem. The locator is
// the manifest path. Rendered documents are written next to it, under
// SourceDir when set.
type Store struct {
	SourceDir string
}

// New creates a Store. An empty sourceDir writes documents relative to the
// manifest's directory.
func New(sourceDir string) *Store {
	return &Store{SourceDir: sourceDir}
}

// Read returns the manifest stored at locator.
func (s *Store) Read(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if locator == "" {
		return nil, fmt.Errorf("manifest path cannot be empty")
	}
	data, err := os.ReadFile(locator)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", locator, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return data, nil
}

// Write stores the manifest and every rendered source atomically, one file at
// a time. Sources are written first so a visible manifest never points
// ahead of its documents.
func (s *Store) Write(ctx context.Context, locator string, manifest []byte, sources map[string]string) error {
	if locator == "" {
		return fmt.Errorf("manifest path cannot be empty")
	}
	root := s.SourceDir
	if root == "" {
		root = filepath.Dir(locator)
	}

	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !filepath.IsLocal(p) {
			return fmt.Errorf("document path %q escapes the source directory", p)
		}
		if err := writeAtomic(filepath.Join(root, filepath.FromSlash(p)), []byte(sources[p])); err != nil {
			return fmt.Errorf("document %s: %w", p, err)
		}
	}
	if err := writeAtomic(locator, manifest); err != nil {
		return fmt.Errorf("manifest %s: %w", locator, err)
	}
	return nil
}

// writeAtomic writes to a temporary file first, syncs via fsync, and then
// renames it to the destination.
func writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
