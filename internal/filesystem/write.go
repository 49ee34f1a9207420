package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"webmedia/internal/logging"
)

// EnsureDir creates dir and its parents. A directory that already exists,
// including one created concurrently by another writer, is not an error.
func EnsureDir(dir string) error {
	start := time.Now()
	err := os.MkdirAll(dir, 0o755)
	if err != nil && errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			err = nil
		}
	}
	observe().ObserveOperation(defaultResolver.Resolve(dir), "mkdir", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic streams write's output into a temporary file next to path
// and renames it over path once write and close have succeeded. On failure
// the temporary file is removed and path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	start := time.Now()
	defer func() {
		observe().ObserveOperation(defaultResolver.Resolve(path), "write", time.Since(start).Seconds(), err)
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logging.Warn("failed to remove temp file %s: %v", tmpName, rmErr)
			}
		}
	}()

	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
