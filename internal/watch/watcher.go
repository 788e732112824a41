// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs packaging when the inputs of a module change.
//
// A Watcher monitors a project directory tree and calls OnChange once the
// tree has been quiet for the debounce period. Events inside the window are
// coalesced, so one editor save or one dependency refresh produces a single
// packaging run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// ErrInvalidGlob is returned by New for malformed include or exclude patterns.
	ErrInvalidGlob = errors.New("watch: invalid glob")
)

// defaultExcludes never trigger a run: VCS metadata, editor swap files and
// the temporary files written by an atomic publish.
var defaultExcludes = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
	"**/.*.tmp-*",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the watched tree. Empty means the working directory.
		Dir string

		// Include selects the files that trigger a run, as doublestar globs
		// relative to Dir. Empty includes every file not excluded.
		Include []string

		// Exclude lists additional doublestar globs that never trigger a run.
		// Callers exclude the bundle output directory here.
		Exclude []string

		// Debounce is the quiet period after the last event.
		Debounce time.Duration

		// OnChange receives the sorted slash-separated paths that changed,
		// relative to Dir. Errors are logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Logger defaults to a discarding logger.
		Logger *slog.Logger
	}

	// Watcher monitors a directory tree. Run may be called once.
	Watcher struct {
		fsw      *fsnotify.Watcher
		dir      string
		include  []string
		exclude  []string
		debounce time.Duration
		onChange func(ctx context.Context, changed []string) error
		logger   *slog.Logger
		started  atomic.Bool
	}

	// pendingSet collects changed paths between runs.
	pendingSet struct {
		mu    sync.Mutex
		paths map[string]struct{}
		timer *time.Timer
	}
)

// New validates cfg and registers every directory under cfg.Dir that is not
// excluded.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		dir = wd
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", dir, err)
	}

	if err := validateGlobs(cfg.Include); err != nil {
		return nil, err
	}
	if err := validateGlobs(cfg.Exclude); err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		dir:      absDir,
		include:  slices.Clone(cfg.Include),
		exclude:  slices.Concat(defaultExcludes, cfg.Exclude),
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
	}
	if err := w.addTree(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after setup failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is canceled, returning nil on cancellation.
// A run that is still in progress when the next window closes is retried
// after it finishes rather than started concurrently.
func (w *Watcher) Run(ctx context.Context) (err error) {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	pending := &pendingSet{paths: make(map[string]struct{})}
	var running atomic.Bool

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("packaging still running, postponing")
			pending.retry(w.debounce)
			return
		}
		defer running.Store(false)

		changed := pending.drain()
		if len(changed) == 0 || w.onChange == nil {
			return
		}
		w.logger.Info("inputs changed", "paths", changed)
		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("packaging failed", "error", err)
		}
	}

	defer func() {
		pending.stop()
		if closeErr := w.fsw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("watch: close fsnotify: %w", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel := w.relative(evt.Name)
			if w.excluded(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.included(rel) {
				continue
			}
			pending.add(rel, w.debounce, fire)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if exhausted(err) {
				return w.limitError(err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (p *pendingSet) add(path string, debounce time.Duration, fire func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths[path] = struct{}{}
	if p.timer == nil {
		p.timer = time.AfterFunc(debounce, fire)
		return
	}
	p.timer.Reset(debounce)
}

func (p *pendingSet) retry(debounce time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Reset(debounce)
	}
}

func (p *pendingSet) drain() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := slices.Sorted(maps.Keys(p.paths))
	clear(p.paths)
	return changed
}

func (p *pendingSet) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
}

// addTree registers every directory under w.dir that is not excluded.
// Unreadable directories are skipped with a warning.
func (w *Watcher) addTree() error {
	err := filepath.WalkDir(w.dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("not watching inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // skip unreadable directories
		}
		if !d.IsDir() {
			return nil
		}
		rel := w.relative(path)
		if rel != "." && (w.excluded(rel) || w.excluded(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return w.limitError(fmt.Errorf("watch: add %s: %w", path, err))
		}
		return nil
	})
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return err
	}
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", w.dir, err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after New.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel := w.relative(path)
	if w.excluded(rel) || w.excluded(rel+"/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("cannot watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) excluded(rel string) bool {
	return matchAny(w.exclude, rel)
}

func (w *Watcher) included(rel string) bool {
	return len(w.include) == 0 || matchAny(w.include, rel)
}

func matchAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultExcludes returns a copy of the built-in exclude globs.
func DefaultExcludes() []string {
	return slices.Clone(defaultExcludes)
}

func validateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("%w: %q", ErrInvalidGlob, g)
		}
	}
	return nil
}
