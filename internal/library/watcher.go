package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mosaic/internal/config"
	"mosaic/internal/labels"
	"mosaic/internal/logging"
	"mosaic/internal/metrics"
)

// Watcher registers videos that appear in the orientation directories while
// the daemon runs. Events are debounced per path so a video still being
// copied is registered once, after writes settle. New items carry no label
// assignments; their sidecar, if any, is picked up by the next full scan.
// Removals are ignored so item indices stay stable for the process lifetime.
type Watcher struct {
	store    *labels.Store
	mediaDir string
	settle   time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	fs      *fsnotify.Watcher
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher for the config's media root.
func NewWatcher(cfg *config.Config, store *labels.Store, logger *slog.Logger) *Watcher {
	return &Watcher{
		store:    store,
		mediaDir: cfg.Paths.MediaDir,
		settle:   time.Duration(cfg.Watcher.SettleMS) * time.Millisecond,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		pending:  make(map[string]*time.Timer),
	}
}

// Start begins watching the orientation directories.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("library: watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	for _, orientation := range config.Orientations {
		dir := filepath.Join(w.mediaDir, orientation)
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch orientation directory",
				logging.String(logging.FieldPath, dir),
				logging.Error(err))
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fs = fsw
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(runCtx, fsw)
	return nil
}

// Stop terminates watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.cancel = nil
	fsw := w.fs
	w.fs = nil
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	cancel()
	fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, VideoExt) {
		return
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
		w.arm(event.Name)
	case event.Has(fsnotify.Write):
		// A write resets an armed timer so a file mid-copy settles, but
		// does not arm one: writes to known videos are not new items.
		w.reset(event.Name)
	case event.Has(fsnotify.Remove):
		w.logger.Debug("ignoring removed video", logging.String(logging.FieldPath, event.Name))
	}
}

func (w *Watcher) arm(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.register(path)
	})
}

func (w *Watcher) reset(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
	}
}

func (w *Watcher) register(path string) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("cannot stat new video",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	rel, err := filepath.Rel(w.mediaDir, path)
	if err != nil {
		return
	}
	id := filepath.ToSlash(rel)
	orientation := ItemOrientation(id)
	if orientation == "" {
		return
	}

	if _, added := w.store.RegisterItem(id); added {
		w.logger.Info("registered new video",
			logging.String(logging.FieldItem, id),
			logging.String(logging.FieldOrientation, orientation))
		metrics.SetLibrarySize(w.store.Len(), len(w.store.Labels()))
	}
}
