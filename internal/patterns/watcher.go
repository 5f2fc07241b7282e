package patterns

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the user patterns directory and hot-reloads the
// registry's user overlay on change.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Debounce rapid file changes
	debounce     time.Duration
	lastReload   time.Time
	pendingTimer *time.Timer
	timerMu      sync.Mutex
}

// NewWatcher creates a new catalog watcher.
func NewWatcher(registry *Registry) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		registry: registry,
		watcher:  fsWatcher,
		stopChan: make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}

	return w, nil
}

// Start begins watching the user patterns directory.
func (w *Watcher) Start() error {
	dir := w.registry.Loader().UserDir()
	if dir == "" {
		log.Warn("No user patterns directory configured, watcher not started")
		return nil
	}

	if err := w.watcher.Add(dir); err != nil {
		// Directory might not exist yet
		log.Warn("Cannot watch patterns directory (may not exist yet): %v", err)
		return nil
	}

	w.wg.Add(1)
	go w.run()

	log.Info("Watching patterns directory: %s", dir)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	w.wg.Wait()

	w.timerMu.Lock()
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.timerMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("Watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".yaml") {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	log.Debug("Pattern file changed: %s (%s)", filepath.Base(event.Name), event.Op)

	w.scheduleReload()
}

func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}

	w.pendingTimer = time.AfterFunc(w.debounce, func() {
		w.doReload()
	})
}

func (w *Watcher) doReload() {
	w.timerMu.Lock()
	w.lastReload = time.Now()
	w.timerMu.Unlock()

	log.Info("Hot reloading user patterns...")
	if err := w.registry.ReloadUser(); err != nil {
		log.Error("Failed to reload patterns: %v", err)
	}
}
