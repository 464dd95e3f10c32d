// Package watch re-runs a callback when watched files change.
//
// Files are watched through their parent directories so editors that save by
// writing a temp file and renaming it are still seen. Events inside the
// debounce window are coalesced into one callback.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// Config holds the parameters for a Watcher.
type Config struct {
	// Files are the paths whose changes trigger OnChange.
	Files []string

	// Debounce is the quiet period after the last event before the callback
	// fires.
	Debounce time.Duration

	// OnChange receives the changed paths, sorted. Errors are logged and do
	// not stop the watcher.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors a fixed set of files. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	started  atomic.Bool
	logger   zerolog.Logger
}

// New creates a Watcher and registers the parent directory of every file.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "watch: no files to watch")
	}

	files := make(map[string]struct{}, len(cfg.Files))
	dirs := make(map[string]struct{})
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "watch: resolve %s", f).
				WithDetail(errors.DetailPath, f)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "watch: create fsnotify watcher")
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrIO, "watch: add directory %s", dir).
				WithDetail(errors.DetailPath, dir)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		files:    files,
		debounce: debounce,
		logger:   logging.GetLogger("watch"),
	}, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error if the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrInternal, "watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			// A run is in progress; retry once it has had time to finish.
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		clear(pending)
		mu.Unlock()
		sort.Strings(changed)

		w.logger.Info().Strs("files", changed).Msg("Change detected")
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error().Err(err).Msg("Watch callback failed")
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to close fsnotify watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New(errors.ErrIO, "watch: event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug().Str("path", evt.Name).Str("op", evt.Op.String()).Msg("File event")

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New(errors.ErrIO, "watch: error channel closed unexpectedly")
			}
			w.logger.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

// relevant reports whether evt touches a watched file. Chmod-only events are
// ignored.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	_, ok := w.files[filepath.Clean(evt.Name)]
	return ok
}
