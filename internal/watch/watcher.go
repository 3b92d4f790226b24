// Package watch reruns a full site generation whenever project sources
// change. Events are debounced so a burst of saves triggers one rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// DefaultDebounce is the quiet period before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// ErrNothingToWatch is returned when no configured path exists.
var ErrNothingToWatch = errors.New("watch: no existing paths to watch")

// Config lists what to observe.
type Config struct {
	// Dirs are watched recursively; missing ones are skipped.
	Dirs []string
	// Files are watched through their parent directory so editors that
	// replace files on save are still seen.
	Files    []string
	Debounce time.Duration
}

// RebuildFunc runs one full generation.
type RebuildFunc func(ctx context.Context) error

// Watcher drives rebuilds from filesystem notifications.
type Watcher struct {
	debounce time.Duration
	dirs     []string
	files    map[string]struct{}
	rebuild  RebuildFunc
	logger   interfaces.Logger
	fsw      *fsnotify.Watcher
}

// New registers every configured path with a fresh fsnotify watcher.
func New(cfg Config, rebuild RebuildFunc, logger interfaces.Logger) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild func is required")
	}
	w := newWatcher(cfg, rebuild, logger)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w.fsw = fsw

	watched := 0
	for _, dir := range w.dirs {
		n, err := w.addRecursive(dir)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		watched += n
	}
	parents := map[string]struct{}{}
	for file := range w.files {
		parent := filepath.Dir(file)
		if _, seen := parents[parent]; seen {
			continue
		}
		parents[parent] = struct{}{}
		if err := fsw.Add(parent); err != nil {
			w.logger.Warn("watch.add.failed", "path", parent, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return nil, ErrNothingToWatch
	}
	return w, nil
}

func newWatcher(cfg Config, rebuild RebuildFunc, logger interfaces.Logger) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		debounce: debounce,
		files:    map[string]struct{}{},
		rebuild:  rebuild,
		logger:   logging.Ensure(logger),
	}
	for _, dir := range cfg.Dirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			w.dirs = append(w.dirs, filepath.Clean(dir))
		}
	}
	for _, file := range cfg.Files {
		if file = strings.TrimSpace(file); file != "" {
			w.files[filepath.Clean(file)] = struct{}{}
		}
	}
	return w
}

// Run blocks until ctx is cancelled. Rebuild failures are logged and the
// loop keeps watching.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watch.started", "dirs", w.dirs, "debounce", w.debounce)
	return w.loop(ctx, w.fsw.Events, w.fsw.Errors)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	var (
		fire    <-chan time.Time
		pending int
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending++
			w.logger.Debug("watch.change", "path", event.Name, "op", event.Op.String())
			fire = time.After(w.debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Error("watch.error", "error", err)
		case <-fire:
			fire = nil
			w.logger.Info("watch.rebuild", "changes", pending)
			pending = 0
			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("watch.rebuild.failed", "error", err)
				continue
			}
			w.logger.Info("watch.rebuild.completed", "duration", time.Since(start))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	for _, dir := range w.dirs {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			if event.Has(fsnotify.Create) {
				w.watchNewDir(name)
			}
			return true
		}
	}
	return false
}

func (w *Watcher) watchNewDir(path string) {
	if w.fsw == nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if _, err := w.addRecursive(path); err != nil {
		w.logger.Warn("watch.add.failed", "path", path, "error", err)
	}
}

func (w *Watcher) addRecursive(root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && current == root {
				w.logger.Debug("watch.skip.missing", "path", root)
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if current != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(current); err != nil {
			return fmt.Errorf("watch: add %s: %w", current, err)
		}
		added++
		return nil
	})
	return added, err
}
