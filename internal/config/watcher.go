package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the user configuration when the file changes on
// disk. Reloaded configs arrive on Changes; parse errors keep the last
// good config and are dropped.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan *Config
	done    chan struct{}
}

// WatchConfig watches the user config file for changes. The watcher
// observes the containing directory because editors typically replace
// the file rather than write it in place.
func WatchConfig() (*Watcher, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:      fs,
		changes: make(chan *Config, 1),
		done:    make(chan struct{}),
	}
	go w.run(path)
	return w, nil
}

// Changes delivers each successfully reloaded config.
func (w *Watcher) Changes() <-chan *Config { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run(path string) {
	base := filepath.Base(path)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := LoadUserConfig()
			if err != nil {
				continue
			}
			// Drop a stale pending config so the channel never blocks.
			select {
			case <-w.changes:
			default:
			}
			select {
			case w.changes <- cfg:
			case <-w.done:
				return
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}
