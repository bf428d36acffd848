// Package watch re-runs fact generation when model inputs change.
//
// Individual files are watched through their parent directory so that
// editors replacing a file by rename still trigger a run. Directory trees
// are watched recursively, picking up directories created later. Bursts
// of events collapse into a single run after the debounce period, and runs
// never overlap.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
)

// DefaultDebounce is used when a non-positive debounce is given.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc regenerates facts. Errors are logged and watching continues.
type RunFunc func(ctx context.Context) error

// Match reports whether a changed path inside a watched tree is an input.
type Match func(path string) bool

type tree struct {
	root    string
	match   Match
	exclude []string
}

// Watcher triggers a RunFunc on input changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	run      RunFunc
	debounce time.Duration
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	files   map[string]bool
	trees   []tree
	timer   *time.Timer
	trigger chan struct{}
}

// New creates a watcher calling run after changes settle for debounce.
func New(run RunFunc, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.ComponentLogger("watch")
	}
	return &Watcher{
		watcher:  fw,
		run:      run,
		debounce: debounce,
		logger:   log,
		files:    make(map[string]bool),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// AddFile watches a single input file.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", path)
	}
	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()
	w.logger.Debugw("Watching file", logger.FieldPath, abs)
	return nil
}

// AddTree watches every directory under root, except hidden, vendor and
// testdata directories and the excluded paths. Changes count only when
// match accepts the path.
func (w *Watcher) AddTree(root string, match Match, exclude ...string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", root)
	}
	t := tree{root: abs, match: match}
	for _, ex := range exclude {
		if exAbs, err := filepath.Abs(ex); err == nil {
			t.exclude = append(t.exclude, exAbs)
		}
	}
	if err := w.addDirs(t, abs); err != nil {
		return err
	}
	w.mu.Lock()
	w.trees = append(w.trees, t)
	w.mu.Unlock()
	return nil
}

func (w *Watcher) addDirs(t tree, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != t.root && skipDir(t, path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		w.logger.Debugw("Watching directory", logger.FieldPath, path)
		return nil
	})
}

func skipDir(t tree, path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || base == "vendor" || base == "testdata" {
		return true
	}
	for _, ex := range t.exclude {
		if path == ex {
			return true
		}
	}
	return false
}

// Run processes events until ctx is cancelled. Each settled burst of
// changes calls the RunFunc once.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.logger.Debugw("Input changed",
					logger.FieldFile, event.Name,
					"op", event.Op.String())
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)

		case <-w.trigger:
			start := time.Now()
			if err := w.run(ctx); err != nil {
				w.logger.Errorw("Regeneration failed", logger.FieldError, err)
				continue
			}
			w.logger.Infow("Regenerated",
				logger.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}
}

// relevant reports whether event concerns an input, registering newly
// created directories inside watched trees on the way.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if isBackupFile(event.Name) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[event.Name] {
		return true
	}
	for _, t := range w.trees {
		if !within(t.root, event.Name) {
			continue
		}
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if !skipDir(t, event.Name) {
					if err := w.addDirs(t, event.Name); err != nil {
						w.logger.Warnw("Failed to watch new directory",
							logger.FieldPath, event.Name,
							logger.FieldError, err)
					}
				}
				return false
			}
		}
		if t.match == nil || t.match(event.Name) {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule debounces rapid changes into one trigger.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
			// a run is already pending
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

// isBackupFile reports editor swap and backup files.
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		strings.HasSuffix(base, ".back1") ||
		strings.HasSuffix(base, ".back2") ||
		strings.HasSuffix(base, ".back3")
}

// GoSource matches Go source files and go.mod, excluding tests.
func GoSource(path string) bool {
	base := filepath.Base(path)
	if base == "go.mod" {
		return true
	}
	return strings.HasSuffix(base, ".go") && !strings.HasSuffix(base, "_test.go")
}
