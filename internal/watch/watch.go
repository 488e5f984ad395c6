// Package watch reports mesh files that changed on disk.
//
// Editors often save by writing a temp file and renaming it over the
// original, which drops a watch on the file itself. The watcher therefore
// watches parent directories and filters events by file name.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 150 * time.Millisecond

// Watcher collects change events for a set of files. It is polled from the
// render loop with Changed, so GL work stays on the main thread.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]string // absolute path -> path as added
	dirs    map[string]int    // watched directory -> file count
	pending map[string]time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// New starts a watcher. A nil logger discards errors.
func New(log *zap.Logger, debounce time.Duration) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		log:      log,
		debounce: debounce,
		files:    make(map[string]string),
		dirs:     make(map[string]int),
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching path. Adding the same file twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = path
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	delete(w.pending, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fs.Remove(dir)
	}
	return nil
}

// Changed returns files whose last event is at least the debounce interval
// old, each once, in the form they were added. It never blocks.
func (w *Watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	now := time.Now()
	for abs, at := range w.pending {
		if now.Sub(at) < w.debounce {
			continue
		}
		delete(w.pending, abs)
		if orig, ok := w.files[abs]; ok {
			out = append(out, orig)
		}
	}
	return out
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		w.pending[abs] = time.Now()
		w.log.Debug("file changed", zap.String("path", abs), zap.Stringer("op", event.Op))
	}
}
