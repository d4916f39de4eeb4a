package prefabs

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce swallows the burst of events editors emit for one save.
const reloadDebounce = 150 * time.Millisecond

// Watcher reports YAML files that changed under the watched directories.
// Events carries slash-separated paths relative to the working directory.
// Errors is best effort and drops errors when nobody is reading.
type Watcher struct {
	fs     *fsnotify.Watcher
	Events chan string
	Errors chan error

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("prefabs: watch: no directories")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("prefabs: watch: %w", err)
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("prefabs: watch %s: %w", dir, err)
		}
	}

	w := &Watcher{
		fs:     fw,
		Events: make(chan string, 16),
		Errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher and closes both channels once the loop has exited.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	// Changes are collected and flushed once the directory is quiet.
	pending := make(map[string]struct{})
	timer := time.NewTimer(reloadDebounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			pending[filepath.ToSlash(event.Name)] = struct{}{}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			for name := range pending {
				select {
				case w.Events <- name:
				case <-w.done:
					return
				}
			}
			clear(pending)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.done:
			timer.Stop()
			return
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return isSpecFile(event.Name)
}

func isSpecFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
