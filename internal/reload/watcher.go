package reload

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher follows a directory tree with fsnotify and calls onChange once a
// burst of file events has settled for the debounce period.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher over dir. It does nothing until Start.
func NewWatcher(dir string, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
	}
}

// Start subscribes to every directory under dir and begins delivering
// changes. Directories created later are picked up as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	if err := addTree(fw, w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	go func() {
		defer close(done)
		defer fw.Close()
		w.loop(ctx, fw)
	}()
	return nil
}

// Stop halts watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(fw, ev.Name); err != nil {
						log.Printf("[reload] watch %s: %v", ev.Name, err)
					}
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("[reload] watcher error: %v", err)
		case <-timer.C:
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// addTree registers root and every directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
}
