package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"webmedia/internal/filesystem"
	"webmedia/internal/logging"
	"webmedia/internal/metrics"
	"webmedia/internal/pathcodec"
)

// PruneSource removes the derivatives of source, a path relative to the
// media root, if source no longer exists. It returns the number of files
// removed. Nothing is removed while the source is still there.
func (e *Engine) PruneSource(source string) (int, error) {
	rel, skip := cleanRelative(filepath.ToSlash(source))
	if skip != "" {
		return 0, fmt.Errorf("%w: %q is outside the media root", ErrInvalidSource, source)
	}

	exists, err := e.sourceExists(rel)
	if err != nil || exists {
		return 0, err
	}

	dir := path.Dir(rel)
	entries, err := os.ReadDir(e.codec.StoragePath(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := path.Join(dir, entry.Name())
		origin, ok := pathcodec.ParseDerived(name)
		if !ok || !origin.Matches(rel) {
			continue
		}
		if err := e.removeDerivative(name); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		metrics.ThumbnailPrunedTotal.WithLabelValues(metrics.TriggerWatch).Add(float64(removed))
		logging.Debug("thumbnail: pruned %d derivatives of %q", removed, rel)
	}
	return removed, nil
}

// PruneOrphans walks the derivative cache and removes every derivative
// whose source is gone. Files that are not derivatives are left alone. It
// stops early when ctx is done.
func (e *Engine) PruneOrphans(ctx context.Context) (int, error) {
	root := e.codec.Root()
	listings := make(map[string][]string)
	removed := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		r, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(r)
		origin, ok := pathcodec.ParseDerived(name)
		if !ok {
			return nil
		}

		names, seen := listings[origin.Dir]
		if !seen {
			names, err = e.listMediaDir(origin.Dir)
			if err != nil {
				return err
			}
			listings[origin.Dir] = names
		}
		for _, n := range names {
			if origin.Matches(origin.Dir + n) {
				return nil
			}
		}

		if err := e.removeDerivative(name); err != nil {
			return err
		}
		removed++
		return nil
	})

	if removed > 0 {
		metrics.ThumbnailPrunedTotal.WithLabelValues(metrics.TriggerSweep).Add(float64(removed))
		logging.Info("thumbnail: pruned %d orphaned derivatives", removed)
	}
	return removed, err
}

func (e *Engine) sourceExists(rel string) (bool, error) {
	_, err := filesystem.StatWithRetry(e.sourcePath(rel), e.retry)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// listMediaDir returns the file names in a media directory; a missing
// directory has none.
func (e *Engine) listMediaDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(e.sourcePath(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (e *Engine) removeDerivative(rel string) error {
	if err := os.Remove(e.codec.StoragePath(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove derivative %s: %w", rel, err)
	}
	return nil
}
