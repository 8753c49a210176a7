// Package watch ingests documents dropped into a watched directory.
// Files created or modified under the directory are picked up via
// fsnotify and handed to the ingest service; the document type is
// inferred from the file extension.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driving"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Watcher monitors a drop folder and ingests supported files as they
// appear. Only regular, non-hidden files with a recognized extension
// are ingested; everything else is skipped.
type Watcher struct {
	ingest driving.IngestService
	dir    string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher over dir. The directory must exist when Start
// is called.
func New(ingest driving.IngestService, dir string) *Watcher {
	return &Watcher{
		ingest: ingest,
		dir:    dir,
	}
}

// Start validates the directory, registers it with fsnotify, and
// blocks processing events until ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch directory error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path is not a directory: %s", w.dir)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("watcher is closed")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.watcher = fw
	w.mu.Unlock()

	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for new documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// handleEvent ingests the file behind a create or write event.
// Removes, renames and chmods are ignored: deleting a file from the
// drop folder does not delete the document it produced.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	filename := filepath.Base(event.Name)
	if isHidden(filename) {
		return
	}

	docType, ok := typeForPath(event.Name)
	if !ok {
		logger.Debug("Skipping unsupported file: %s", filename)
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}

	doc, err := w.ingest.Upload(ctx, event.Name, docType, filename)
	if err != nil {
		logger.Warn("Failed to ingest %s: %v", filename, err)
		return
	}
	logger.Info("Ingested %s (%d chunks)", filename, doc.Stats.ChunksCount)
}

// typeForPath maps a file extension to a document type.
func typeForPath(path string) (domain.DocumentType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return domain.DocumentTypeTXT, true
	case ".pdf":
		return domain.DocumentTypePDF, true
	default:
		return "", false
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
