package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce batches bursts of write events (editors save in
// several steps) into a single reload.
const DefaultReloadDebounce = 500 * time.Millisecond

// Watcher monitors catalog files and invokes a reload callback when any
// of them changes. Events for unrelated files in the watched
// directories are ignored.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	onReload func(paths []string)
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// NewWatcher creates a watcher over the given catalog files. onReload
// receives the set of changed paths after the debounce window closes.
func NewWatcher(paths []string, debounce time.Duration, logger *log.Logger, onReload func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		onReload: onReload,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]bool),
	}

	// Watch parent directories: editors replace files on save, and a
	// watch on the file itself is lost when the inode goes away.
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			cancel()
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start begins processing file events.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.processEvents()
}

// Stop tears the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	if !w.files[abs] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[abs] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(pending) == 0 || w.ctx.Err() != nil {
		return
	}

	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}

	w.logger.Info("catalog files changed, reloading", "files", len(paths))
	if w.onReload != nil {
		w.onReload(paths)
	}
}
