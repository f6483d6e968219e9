package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/model"
	"github.com/roach88/francagen/internal/resource"
)

// DefaultDebounce collapses bursts of file events into one regeneration.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers a callback when model files or templates change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger
	dirs     []string
}

// NewWatcher watches the directories holding paths. A path that is itself a
// directory is watched directly; paths that do not exist are skipped.
func NewWatcher(paths []string, debounce time.Duration, logger *zap.SugaredLogger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{watcher: fw, debounce: debounce, logger: logger}
	for _, p := range paths {
		dir := p
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			dir = filepath.Dir(p)
		}
		dir = filepath.Clean(dir)
		if slices.Contains(w.dirs, dir) {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		w.dirs = append(w.dirs, dir)
	}
	if len(w.dirs) == 0 {
		fw.Close()
		return nil, errors.New("nothing to watch")
	}
	return w, nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return slices.Clone(w.dirs)
}

// Run calls onChange after every debounced burst of relevant events until
// ctx is cancelled. Calls never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	defer w.watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			w.logger.Debugw("Watcher detected change", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", "error", err)
		}
	}
}

// relevantEvent reports whether event touches a model file or template.
func relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return watchedFile(event.Name)
}

func watchedFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		// editor swap files and atomic-write temporaries
		return false
	}
	if _, ok := model.FormatOf(path); ok {
		return true
	}
	return filepath.Ext(base) == ".tpl" || base == resource.BoilerplateName
}
