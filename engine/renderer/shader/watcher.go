package shader

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/fsnotify/fsnotify"
)

// Watcher collects WGSL files that changed on disk. Events arrive on a background goroutine
// and are queued until Flush is called, so the frame loop decides when a reload is applied.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher starts watching the given directories for written or created .wgsl files.
//
// Parameters:
//   - dirs: the directories to watch, not recursive
//
// Returns:
//   - *Watcher: the running watcher, Close it when done
//   - error: an error if the watcher could not be created or a directory could not be added
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		done:    make(chan struct{}),
		pending: make(map[string]struct{}),
	}
	w.wg.Add(1)
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), SourceExt) {
				continue
			}
			w.mu.Lock()
			w.pending[cleanPath(event.Name)] = struct{}{}
			w.mu.Unlock()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("shader watcher error", "error", err)
		}
	}
}

// Flush returns the changed paths queued since the last Flush, sorted, and clears the queue.
//
// Returns:
//   - []string: absolute paths of changed shader files
func (w *Watcher) Flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	sort.Strings(paths)
	return paths
}

// Close stops the watcher and waits for the event goroutine to exit. Later calls are no-ops.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
