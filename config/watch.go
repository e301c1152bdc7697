package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/achilleasa/rtpreview/log"
)

// A Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	logger  log.Logger
	watcher *fsnotify.Watcher
	path    string

	changes chan Settings
	done    chan struct{}
}

// Start watching a settings file. The parent directory is watched so that
// editors which replace the file on save are handled.
func Watch(path string) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: could not create watcher: %v", err)
	}
	if err = fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: could not watch %s: %v", path, err)
	}

	w := &Watcher{
		logger:  log.New("config"),
		watcher: fsw,
		path:    absPath,
		changes: make(chan Settings, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Get the channel that receives reloaded settings. Only the most recent
// reload is kept if the receiver falls behind.
func (w *Watcher) Changes() <-chan Settings {
	return w.changes
}

// Stop watching. The changes channel is closed once the watch loop exits.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warningf("watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		// Editors may trigger events on partially written files; keep the
		// current settings until the next change.
		w.logger.Warningf("ignoring settings change: %v", err)
		return
	}
	w.logger.Noticef("reloaded settings from %s", w.path)

	// Replace any reload the receiver has not picked up yet.
	select {
	case <-w.changes:
	default:
	}
	w.changes <- s
}
