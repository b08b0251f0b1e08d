// Package watch hands new recordings to a handler as they appear in a set of
// directories. Files are handled once writes to them have settled.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay unchanged before it is handled.
const DefaultDebounce = 2 * time.Second

// Ticks per debounce window when checking for settled files.
const settleChecksPerWindow = 5

// ErrNoDirs indicates a watcher configured without directories.
var ErrNoDirs = errors.New("no directories to watch")

// Handler processes one settled file. Errors are logged and counted; the
// watcher keeps running.
type Handler func(ctx context.Context, path string) error

// Config controls which files are handled.
type Config struct {
	Dirs []string

	// Extensions to accept, compared case-insensitively (".wav").
	// Empty accepts every file.
	Extensions []string

	// SkipPrefix excludes files whose base name starts with it, so the
	// watcher does not pick up its own output.
	SkipPrefix string

	// Existing also handles matching files present when Run starts.
	Existing bool

	Debounce time.Duration
	Logger   *zap.Logger
}

// Stats counts watcher activity.
type Stats struct {
	Handled int
	Failed  int
	Ignored int
}

// Watcher watches directories for new recordings.
type Watcher struct {
	cfg     Config
	handle  Handler
	logger  *zap.Logger
	ready   chan struct{}
	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// New creates a watcher. Nothing is watched until Run is called.
func New(cfg Config, handle Handler) (*Watcher, error) {
	if len(cfg.Dirs) == 0 {
		return nil, ErrNoDirs
	}
	if handle == nil {
		return nil, errors.New("nil handler")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		cfg:     cfg,
		handle:  handle,
		logger:  logger,
		ready:   make(chan struct{}),
		pending: make(map[string]time.Time),
	}, nil
}

// Ready is closed once all directories are being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Match reports whether path would be handled.
func (w *Watcher) Match(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if w.cfg.SkipPrefix != "" && strings.HasPrefix(base, w.cfg.SkipPrefix) {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(base)
	for _, e := range w.cfg.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// Run watches until ctx is canceled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Warn("failed to close watcher", zap.Error(err))
		}
	}()

	for _, dir := range w.cfg.Dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Info("watching directory", zap.String("dir", dir))
	}
	close(w.ready)

	if w.cfg.Existing {
		w.queueExisting()
	}

	ticker := time.NewTicker(w.cfg.Debounce / settleChecksPerWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.record(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))

		case <-ticker.C:
			w.handleSettled(ctx)
		}
	}
}

func (w *Watcher) record(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if !w.Match(event.Name) {
			w.stats.Ignored++
			return
		}
		w.pending[event.Name] = time.Now()
	}
}

func (w *Watcher) queueExisting() {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, dir := range w.cfg.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.logger.Warn("failed to list directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.Type().IsRegular() && w.Match(path) {
				w.pending[path] = now
			}
		}
	}
}

func (w *Watcher) handleSettled(ctx context.Context) {
	now := time.Now()
	var settled []string

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.cfg.Debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			w.logger.Debug("settled file vanished", zap.String("path", path))
			continue
		}

		w.logger.Info("new recording", zap.String("path", path))
		err := w.handle(ctx, path)

		w.mu.Lock()
		if err != nil {
			w.stats.Failed++
		} else {
			w.stats.Handled++
		}
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("failed to handle recording", zap.String("path", path), zap.Error(err))
		}
	}
}
