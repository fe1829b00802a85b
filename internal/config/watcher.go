package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/asteronote/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reloading.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned by Run on a closed watcher.
var ErrWatcherClosed = errors.New("config watcher closed")

// ReloadFunc receives the result of every reload. A file that fails to
// load or validate is reported through err; the previous configuration
// stays in effect for the caller.
type ReloadFunc func(cfg *Config, err error)

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the settle time. Zero reloads on every event.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithWatchClock sets the clock driving the debounce timer.
func WithWatchClock(clk clock.Clock) WatchOption {
	return func(w *Watcher) {
		if clk != nil {
			w.clock = clk
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *logging.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher reloads a configuration file when it changes. The parent
// directory is watched so editors that save by rename are seen too.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	clock    clock.Clock
	logger   *logging.Logger
	reload   chan struct{}

	mu     sync.Mutex
	timer  *clock.Timer
	closed bool
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := FormatOf(abs); err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		clock:    clock.New(),
		logger:   logging.Nop(),
		reload:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("config").WithField("path", abs)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers reloads to fn until ctx is done or the watcher is closed.
// fn is called from Run's goroutine only.
func (w *Watcher) Run(ctx context.Context, fn ReloadFunc) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrWatcherClosed
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err.Error())

		case <-w.reload:
			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload failed", "error", err.Error())
			} else {
				w.logger.Info("config reloaded")
			}
			fn(cfg, err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// schedule queues a reload after the debounce window, restarting the
// window on every call.
func (w *Watcher) schedule() {
	fire := func() {
		select {
		case w.reload <- struct{}{}:
		default:
		}
	}
	if w.debounce == 0 {
		fire()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.clock.AfterFunc(w.debounce, fire)
}

// Close stops watching. Close is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

// Watch reloads path until ctx is done.
func Watch(ctx context.Context, path string, fn ReloadFunc, opts ...WatchOption) error {
	w, err := NewWatcher(path, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	err = w.Run(ctx, fn)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
