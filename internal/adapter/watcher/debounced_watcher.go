package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
)

// WatchedDirs are the directories under each root whose changes trigger a re-derive
var WatchedDirs = []string{".specify", "specs"}

// Options configures a DebouncedWatcher
type Options struct {
	Roots       []string
	Debounce    time.Duration
	MinInterval time.Duration
	Logger      app.Logger
}

// DebouncedWatcher turns bursts of filesystem events under the spec-kit
// directories into single change signals.
type DebouncedWatcher struct {
	roots       []string
	debounce    time.Duration
	minInterval time.Duration
	logger      app.Logger
	now         func() time.Time
}

// New creates a watcher. MinInterval defaults to Debounce.
func New(opts Options) *DebouncedWatcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = debounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = app.NopLogger()
	}
	return &DebouncedWatcher{
		roots:       opts.Roots,
		debounce:    debounce,
		minInterval: minInterval,
		logger:      logger,
		now:         time.Now,
	}
}

// Delay returns how long to wait before emitting, given the time since the last emission
func (w *DebouncedWatcher) Delay(sinceLast time.Duration) time.Duration {
	delay := w.minInterval - sinceLast
	if delay < w.debounce {
		return w.debounce
	}
	return delay
}

// Run watches until ctx is done, calling onChange from the calling goroutine after
// each settled burst of events.
func (w *DebouncedWatcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	for _, root := range w.roots {
		// The root itself is watched so .specify or specs created later are picked up.
		if err := fw.Add(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		for _, name := range WatchedDirs {
			w.addTree(fw, filepath.Join(root, name))
		}
	}

	var (
		timer    *time.Timer
		fire     <-chan time.Time
		lastEmit time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("fsnotify event=%s file=%s", event.Op, event.Name)
			if event.Has(fsnotify.Create) {
				w.addTree(fw, event.Name)
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.Delay(w.now().Sub(lastEmit)))
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			lastEmit = w.now()
			onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("fsnotify error=%v", err)
		}
	}
}

// relevant reports whether path lies inside one of the watched directories of a root
func (w *DebouncedWatcher) relevant(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		top := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		for _, name := range WatchedDirs {
			if top == name {
				return true
			}
		}
	}
	return false
}

// addTree adds dir and every directory below it. Missing directories are ignored.
func (w *DebouncedWatcher) addTree(fw *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				w.logger.Warn("watch %s: %v", path, err)
			}
		}
		return nil
	})
}
