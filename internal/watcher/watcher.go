package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webmedia/internal/logging"
	"webmedia/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Pruner removes derivatives whose source is gone. *thumbnail.Engine
// implements it.
type Pruner interface {
	PruneSource(source string) (int, error)
	PruneOrphans(ctx context.Context) (int, error)
}

// Config configures a Watcher.
type Config struct {
	// Root is the media directory to watch, recursively.
	Root string
	// Debounce delays a prune after the last event for the same path.
	Debounce time.Duration
	// SweepInterval is how often the whole cache is checked for orphans.
	// Zero disables the periodic sweep.
	SweepInterval time.Duration
}

// DefaultConfig returns the default debounce and sweep interval.
func DefaultConfig(root string) Config {
	return Config{
		Root:          root,
		Debounce:      500 * time.Millisecond,
		SweepInterval: time.Hour,
	}
}

// sweepKey is the pending-map key of a full sweep; it cannot collide with a
// relative path.
const sweepKey = "/"

// Watcher prunes derivatives when their media files are removed or renamed.
type Watcher struct {
	cfg    Config
	pruner Pruner
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	dirs    map[string]struct{}
	pending map[string]*time.Timer
	stopped bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher. It does nothing until Start.
func New(cfg Config, pruner Pruner) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultConfig("").Debounce
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	cfg.Root = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		cfg:     cfg,
		pruner:  pruner,
		fsw:     fsw,
		dirs:    make(map[string]struct{}),
		pending: make(map[string]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start watches every directory below the root and begins pruning.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.cfg.Root); err != nil {
		return err
	}
	logging.Info("Watching %d media directories under %s", w.watchedCount(), w.cfg.Root)

	w.wg.Add(1)
	go w.loop()

	if w.cfg.SweepInterval > 0 {
		w.wg.Add(1)
		go w.sweepLoop()
	}
	return nil
}

// Stop ends watching and cancels pending prunes. It is safe to call more
// than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		for key, t := range w.pending {
			t.Stop()
			delete(w.pending, key)
		}
		w.mu.Unlock()

		w.cancel()
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("media watcher error: %v", err)
		}
	}
}

func (w *Watcher) sweepLoop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// handle turns one fsnotify event into watch-list updates and prunes.
func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if strings.HasPrefix(filepath.Base(name), ".") {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		metrics.WatcherEventsTotal.WithLabelValues("create").Inc()
		if err := w.addRecursive(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("media watcher: cannot watch %s: %v", name, err)
		}

	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op := "remove"
		if ev.Has(fsnotify.Rename) {
			op = "rename"
		}
		metrics.WatcherEventsTotal.WithLabelValues(op).Inc()

		if w.forgetDir(name) {
			// The files below it are unknown now; let a sweep find them.
			w.schedule(sweepKey)
			return
		}
		rel, err := filepath.Rel(w.cfg.Root, name)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		w.schedule(filepath.ToSlash(rel))
	}
}

// schedule runs the prune for key after the debounce delay, restarting the
// delay if one is already pending.
func (w *Watcher) schedule(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.pending[key]; ok {
		t.Stop()
	}
	w.pending[key] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, key)
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}

		if key == sweepKey {
			w.sweep()
			return
		}
		if _, err := w.pruner.PruneSource(key); err != nil {
			logging.Warn("media watcher: prune %s: %v", key, err)
		}
	})
}

func (w *Watcher) sweep() {
	if _, err := w.pruner.PruneOrphans(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Warn("media watcher: orphan sweep: %v", err)
	}
}

// addRecursive watches dir and every directory below it. A path that is
// not a directory is ignored.
func (w *Watcher) addRecursive(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		w.mu.Lock()
		w.dirs[filepath.Clean(p)] = struct{}{}
		w.mu.Unlock()
		return nil
	})
	metrics.WatchedDirectories.Set(float64(w.watchedCount()))
	return err
}

// forgetDir drops dir and everything below it from the watch list. It
// reports whether dir was a watched directory.
func (w *Watcher) forgetDir(dir string) bool {
	w.mu.Lock()
	_, ok := w.dirs[dir]
	if ok {
		prefix := dir + string(filepath.Separator)
		for d := range w.dirs {
			if d == dir || strings.HasPrefix(d, prefix) {
				delete(w.dirs, d)
			}
		}
	}
	n := len(w.dirs)
	w.mu.Unlock()

	if ok {
		metrics.WatchedDirectories.Set(float64(n))
	}
	return ok
}

func (w *Watcher) watchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}
