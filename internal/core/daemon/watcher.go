// Package daemon watches a transcript directory and imports files as they
// appear.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neilberkman/chronicler/internal/core/importer"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/pkg/logger"
	"github.com/neilberkman/chronicler/pkg/transcripts"
)

const module = "watcher"

// DefaultSettle is how long a file must be quiet before it is imported
const DefaultSettle = 2 * time.Second

// Stats tracks watcher activity
type Stats struct {
	StartTime  time.Time
	Imported   int
	Skipped    int
	Errors     int
	LastImport time.Time
}

// Watcher imports transcript files written under a directory
type Watcher struct {
	imp       *importer.Importer
	watcher   *fsnotify.Watcher
	watchPath string
	log       logger.Logger

	// Settle is the quiet period before a changed file is imported
	Settle time.Duration
	// OnImport is called for every session created
	OnImport func(*models.ProcessingSession)

	mu      sync.Mutex
	stats   Stats
	pending map[string]time.Time
}

// New creates a watcher for watchPath
func New(imp *importer.Importer, watchPath string, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop{}
	}

	info, err := os.Stat(watchPath)
	if err != nil {
		return nil, fmt.Errorf("watch path does not exist: %s", watchPath)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path is not a directory: %s", watchPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		imp:       imp,
		watcher:   watcher,
		watchPath: watchPath,
		log:       log,
		Settle:    DefaultSettle,
		pending:   make(map[string]time.Time),
		stats:     Stats{StartTime: time.Now()},
	}, nil
}

// Start imports what is already in the directory, then watches for changes
// until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	defer func() {
		_ = w.watcher.Close()
	}()

	if err := w.addWatches(w.watchPath); err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	summary, err := w.imp.ImportDirectory(w.watchPath, nil)
	if err != nil {
		w.log.Warn(module, "initial import failed", map[string]interface{}{"error": err.Error()})
	} else {
		w.record(summary.Sessions, summary.Skipped, summary.Failed)
	}

	interval := w.Settle / 2
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info(module, "watcher stopped", nil)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.log.Error(module, "watcher error", map[string]interface{}{"error": err.Error()})
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// Stats returns a snapshot of watcher activity
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// addWatches watches root and every directory below it
func (w *Watcher) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatches(event.Name); err != nil {
				w.log.Warn(module, "failed to watch new directory", map[string]interface{}{
					"dir":   event.Name,
					"error": err.Error(),
				})
			}
			return
		}
	}

	if !transcripts.Supported(event.Name) {
		return
	}

	// Restart the quiet period on every write
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush imports files that have been quiet for Settle
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.Settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		session, err := w.imp.ImportFile(path)
		if err != nil {
			w.log.Error(module, "import failed", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			w.record(nil, 0, 1)
			continue
		}
		if session == nil {
			w.record(nil, 1, 0)
			continue
		}
		w.record([]*models.ProcessingSession{session}, 0, 0)
	}
}

func (w *Watcher) record(sessions []*models.ProcessingSession, skipped, failed int) {
	w.mu.Lock()
	w.stats.Imported += len(sessions)
	w.stats.Skipped += skipped
	w.stats.Errors += failed
	if len(sessions) > 0 {
		w.stats.LastImport = time.Now()
	}
	w.mu.Unlock()

	if w.OnImport != nil {
		for _, s := range sessions {
			w.OnImport(s)
		}
	}
}
