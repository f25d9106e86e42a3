package web

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/vulgata/core/errors"
	"github.com/FocuswithJustin/vulgata/internal/logging"
)

// DefaultDebounce is how long the watcher waits after the last change before
// triggering a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers a callback when book data or the page template changes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	files    map[string]bool
	debounce time.Duration
	onChange func(ctx context.Context)

	pending  bool
	lastSeen time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher watches dataDir for book files. When template is non-empty its
// directory is watched too, but only changes to the template itself count.
func NewWatcher(dataDir, template string, onChange func(ctx context.Context)) *Watcher {
	w := &Watcher{
		dirs:     []string{dataDir},
		files:    make(map[string]bool),
		debounce: DefaultDebounce,
		onChange: onChange,
	}
	if template != "" {
		w.dirs = append(w.dirs, filepath.Dir(template))
		w.files[filepath.Clean(template)] = true
	}
	return w
}

// SetDebounce changes the quiet period. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. It returns once the directories are registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	// A missing data dir builds as an empty library; create it so books
	// added later are picked up.
	if err := os.MkdirAll(w.dirs[0], 0755); err != nil {
		return errors.NewIO("create data directory", w.dirs[0], err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	seen := make(map[string]bool)
	for _, dir := range w.dirs {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return errors.NewIO("watch", dir, err)
		}
		logging.Debug("watching directory", "path", dir)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 3
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			logging.Warn("file watcher error", "error", err)
		case <-ticker.C:
			if w.due() {
				w.onChange(ctx)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.relevant(event.Name) {
		return
	}
	logging.Debug("change detected", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.pending = true
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

// relevant reports whether a changed path should trigger a rebuild: JSON files
// in the data directory and the template file.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json") && filepath.Dir(name) == filepath.Clean(w.dirs[0])
}

// due reports and clears a pending change once the quiet period has passed.
func (w *Watcher) due() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastSeen) < w.debounce {
		return false
	}
	w.pending = false
	return true
}
