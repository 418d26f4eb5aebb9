package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/otiai10/copy"
)

// FS is the filesystem collaborator of the installer.
type FS interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// MkdirTemp creates a new, uniquely named directory.
	MkdirTemp(dir, pattern string) (string, error)
	// ReadDir returns the names of the entries of dir.
	ReadDir(dir string) ([]string, error)
	// Move makes src available at dst in one step.
	Move(src, dst string) error
	// RemoveAll removes path recursively. A missing path is not an error.
	RemoveAll(path string) error
}

//nolint:gochecknoglobals // Test seams for os.Rename() and os.Link().
var (
	rename = os.Rename
	link   = os.Link
)

// OSFS implements FS on the local filesystem.
type OSFS struct{}

// Exists reports whether path exists, following symlinks.
func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// MkdirTemp creates a directory in dir, or in the default temp directory
// when dir is empty.
func (OSFS) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

// ReadDir returns the entry names of dir, sorted by name.
func (OSFS) ReadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Move renames src to dst, creating dst's parent directories. When src and
// dst live on different devices, src is copied into a hidden directory next
// to dst first and moved from there, so dst never appears half-written.
//
// A file is never moved over an existing dst: it is hard-linked into place
// and the link fails with os.ErrExist when dst is already there.
func (OSFS) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.IsDir() {
		err = rename(src, dst)
	} else {
		err = moveFile(link, src, dst)
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyThenMove(src, dst, info.IsDir())
}

// moveFile links src at dst and removes src. Filesystems without hard
// links fall back to a rename once dst is confirmed absent.
func moveFile(linkFn func(oldname, newname string) error, src, dst string) error {
	err := linkFn(src, dst)
	switch {
	case err == nil:
		// dst is in place; a leftover src goes with the staging dir.
		_ = os.Remove(src)
		return nil
	case errors.Is(err, os.ErrExist), errors.Is(err, syscall.EXDEV):
		return err
	}
	if _, statErr := os.Lstat(dst); statErr == nil {
		return fmt.Errorf("link %s: %w", dst, os.ErrExist)
	}
	return rename(src, dst)
}

// RemoveAll removes path and any children it contains.
func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func copyThenMove(src, dst string, isDir bool) error {
	tmpDir, err := os.MkdirTemp(filepath.Dir(dst), ".getnode-copy-*")
	if err != nil {
		return fmt.Errorf("create copy dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	staged := filepath.Join(tmpDir, filepath.Base(dst))
	opts := copy.Options{
		OnSymlink:     func(string) copy.SymlinkAction { return copy.Shallow },
		PreserveTimes: true,
		Sync:          true,
	}
	if err := copy.Copy(src, staged, opts); err != nil {
		return fmt.Errorf("copy across devices: %w", err)
	}

	if isDir {
		err = os.Rename(staged, dst)
	} else {
		err = moveFile(os.Link, staged, dst)
	}
	if err != nil {
		return err
	}
	return os.RemoveAll(src)
}
