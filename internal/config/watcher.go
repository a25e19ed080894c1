package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/draftcast/draftcast/internal/logger"
)

// Watcher reloads the project file when it changes on disk and reports the
// fresh config through a callback. The watcher runs its own goroutine; the
// callback must be safe to call from it.
type Watcher struct {
	workingDir string
	watcher    *fsnotify.Watcher
	onChange   func(*Config)

	mu     sync.Mutex
	closed bool
}

// NewWatcher watches workingDir for changes to the project file. The
// directory is watched rather than the file so editors that replace the file
// on save (rename + create) are still observed.
func NewWatcher(workingDir string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(workingDir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		workingDir: workingDir,
		watcher:    fsw,
		onChange:   onChange,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	target := filepath.Join(w.workingDir, ProjectFileName)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.workingDir)
			if err != nil {
				logger.Warn("Failed to reload %s: %v", ProjectFileName, err)
				continue
			}
			logger.Info("Reloaded %s", ProjectFileName)
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
