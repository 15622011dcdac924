package scheduler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

// CatalogueWatcher asks for a reload as soon as the ventures file changes
// on disk, instead of waiting for the next periodic reload.
//
// The parent directory is watched rather than the file: editors and
// mounted config maps replace the file, which drops a watch on the file
// itself.
type CatalogueWatcher struct {
	watcher *fsnotify.Watcher
	file    string
	trigger chan<- struct{}
	logger  logger.Logger
	doneCh  chan struct{}
}

// NewCatalogueWatcher watches venturesFile and sends on trigger when it
// changes. Sends never block: a pending reload already covers the change.
func NewCatalogueWatcher(venturesFile string, trigger chan<- struct{}, log logger.Logger) (*CatalogueWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	file := filepath.Clean(venturesFile)
	if err := w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(file), err)
	}
	return &CatalogueWatcher{
		watcher: w,
		file:    file,
		trigger: trigger,
		logger:  log,
		doneCh:  make(chan struct{}),
	}, nil
}

// Start runs the watch loop until ctx is done or Stop is called.
func (cw *CatalogueWatcher) Start(ctx context.Context) {
	go func() {
		defer close(cw.doneCh)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-cw.watcher.Events:
				if !ok {
					return
				}
				if cw.relevant(ev) {
					cw.notify(ev)
				}
			case err, ok := <-cw.watcher.Errors:
				if !ok {
					return
				}
				cw.logger.Warn("catalogue watcher error", logger.Error(err))
			}
		}
	}()
}

// Stop closes the watcher and waits for the loop to exit.
func (cw *CatalogueWatcher) Stop() {
	if err := cw.watcher.Close(); err != nil {
		cw.logger.Warn("failed to close catalogue watcher", logger.Error(err))
	}
	<-cw.doneCh
}

func (cw *CatalogueWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	// Kubernetes swaps config maps through a "..data" symlink in the same dir.
	return filepath.Clean(ev.Name) == cw.file || filepath.Base(ev.Name) == "..data"
}

func (cw *CatalogueWatcher) notify(ev fsnotify.Event) {
	select {
	case cw.trigger <- struct{}{}:
		cw.logger.Info("ventures file changed, reload requested",
			logger.String("file", ev.Name),
			logger.String("op", ev.Op.String()))
	default:
	}
}
