package registry

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watcher reloads the capability table when the file changes on disk.
type watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts live reloading of the registry's table file. A failed reload
// keeps the previous table; the error is logged, never fatal. Callers must
// Close the registry when done.
func (r *Registry) Watch() error {
	r.mu.RLock()
	path := r.path
	r.mu.RUnlock()
	if path == "" {
		// Built-in table, nothing to watch.
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors replace files by rename
	// and the watch would be lost.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return err
	}

	w := &watcher{fsw: fsw, done: make(chan struct{})}

	r.mu.Lock()
	r.watcher = w
	r.mu.Unlock()

	go w.run(r, path)
	return nil
}

func (w *watcher) run(r *Registry, path string) {
	base := filepath.Base(path)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := r.reload(path); err != nil {
				log.Printf("[registry] reload failed, keeping previous table: %v", err)
				continue
			}
			log.Printf("[registry] capability table reloaded (%d agents)", r.Count())
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[registry] watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the live-reload watcher, if one is running.
func (r *Registry) Close() error {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	if w == nil {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}
