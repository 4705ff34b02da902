package riftplot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatcherStats tracks source watcher activity.
type WatcherStats struct {
	Events        int
	Edits         int // edits posted to the sink
	Unchanged     int // writes whose content matched the last edit
	Errors        int
	LastEventTime time.Time
}

// SourceWatcher follows a scene source file and posts its content as an
// edit whenever it changes. The directory is watched rather than the file so
// that editors which save by rename are followed.
//
// The watcher goroutine only calls sink; Sandbox.Edit is safe for that.
type SourceWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	path    string
	sink    func(string)
	logger  *zap.Logger
	last    string
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stats   WatcherStats
}

// NewSourceWatcher creates a watcher for path that delivers content to sink.
func NewSourceWatcher(path string, sink func(string), logger *zap.Logger) (*SourceWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceWatcher{
		watcher: w,
		path:    abs,
		sink:    sink,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Path returns the absolute path being followed.
func (sw *SourceWatcher) Path() string {
	return sw.path
}

// Stats returns a snapshot of watcher counters.
func (sw *SourceWatcher) Stats() WatcherStats {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.stats
}

// Start posts the current content once, then follows changes in a
// goroutine until ctx is done or Stop is called. It is non-blocking.
func (sw *SourceWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(filepath.Dir(sw.path)); err != nil {
		sw.mu.Lock()
		sw.running = false
		sw.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(sw.path), err)
	}
	sw.logger.Info("watching scene source", zap.String("path", sw.path))
	sw.reload()

	go sw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (sw *SourceWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh
	if err := sw.watcher.Close(); err != nil {
		sw.logger.Warn("closing watcher", zap.Error(err))
	}
}

func (sw *SourceWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(ev)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("watcher error", zap.Error(err))
			sw.mu.Lock()
			sw.stats.Errors++
			sw.mu.Unlock()
		}
	}
}

func (sw *SourceWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != sw.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	sw.mu.Lock()
	sw.stats.Events++
	sw.stats.LastEventTime = time.Now()
	sw.mu.Unlock()
	sw.reload()
}

// reload reads the file and posts it unless it matches the last edit.
func (sw *SourceWatcher) reload() {
	data, err := os.ReadFile(sw.path)
	if err != nil {
		sw.logger.Debug("scene source not readable", zap.String("path", sw.path), zap.Error(err))
		return
	}
	text := string(data)

	sw.mu.Lock()
	if text == sw.last && sw.stats.Edits > 0 {
		sw.stats.Unchanged++
		sw.mu.Unlock()
		return
	}
	sw.last = text
	sw.stats.Edits++
	sw.mu.Unlock()

	sw.logger.Debug("scene source changed", zap.String("path", sw.path), zap.Int("bytes", len(data)))
	sw.sink(text)
}
