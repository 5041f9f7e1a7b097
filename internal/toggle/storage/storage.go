package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Storage provides low-level file operations with safety validations.
type Storage struct {
	fs afero.Fs
}

// New creates a new Storage instance.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// FileSystem returns the underlying filesystem.
func (s *Storage) FileSystem() afero.Fs {
	return s.fs
}

// ValidatePathSafety checks that the path is not a symlink, preventing writes through symlinks.
// It returns nil if the path doesn't exist or is a regular file/directory.
func (s *Storage) ValidatePathSafety(path string) error {
	if lstater, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to check path: %w", err)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to operate on symlink: %s", path)
		}
	}
	// In-memory filesystems don't support symlinks
	return nil
}

// IsFile reports whether path exists and is not a directory.
func (s *Storage) IsFile(path string) (bool, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// IsDir reports whether path exists and is a directory.
func (s *Storage) IsDir(path string) (bool, error) {
	return afero.DirExists(s.fs, path)
}

// MkdirAll creates a directory along with any missing parents.
func (s *Storage) MkdirAll(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

// CreateFile creates a new file holding content. It never truncates an
// existing file: if path is already there the returned error wraps os.ErrExist.
func (s *Storage) CreateFile(path string, content []byte) (err error) {
	if err := s.ValidatePathSafety(path); err != nil {
		return err
	}

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if len(content) == 0 {
		return nil
	}
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Glob returns the files under root matching pattern, which may use "**" to
// cross any number of directories. Results are absolute and come back in
// directory walk order. The pattern is anchored at root, so "spec/**/x" does
// not match a spec tree nested below another directory.
func (s *Storage) Glob(root, pattern string) ([]string, error) {
	fsys := afero.NewIOFS(afero.NewBasePathFs(s.fs, root))
	matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, root, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}
