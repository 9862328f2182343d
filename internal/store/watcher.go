package store

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor write bursts into one reload
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a graph file whenever it changes on disk
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// OnChange receives each successfully reloaded document
	OnChange func(*Graph)

	// OnError receives reload failures; nil logs them
	OnError func(error)

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches path. The parent directory is watched so editors that
// replace the file by rename are still seen.
func NewWatcher(path string, onChange func(*Graph)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		watcher:  fw,
		OnChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period before a reload
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run processes events until Close is called
func (w *Watcher) Run() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	pending := false

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("[Watcher] error:", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()

		case <-w.done:
			debounce.Stop()
			return
		}
	}
}

func (w *Watcher) reload() {
	g, err := Load(w.path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(err)
		} else {
			log.Printf("[Watcher] reload failed: %v", err)
		}
		return
	}
	if w.OnChange != nil {
		w.OnChange(g)
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
