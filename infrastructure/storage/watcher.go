package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefinitionWatcher reports changes to definition files below a root.
// Rapid saves are collapsed into one notification per debounce window.
type DefinitionWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
}

// NewDefinitionWatcher - creates a watcher over root and all its subdirectories
func NewDefinitionWatcher(root string, debounce time.Duration, logger *logrus.Logger) (*DefinitionWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dw := &DefinitionWatcher{
		watcher:  w,
		root:     root,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
	}

	if err := dw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}

	return dw, nil
}

// Run - blocks until ctx is done, calling onChange with the changed files
// after each quiet debounce window
func (dw *DefinitionWatcher) Run(ctx context.Context, onChange func(files []string)) error {
	ticker := time.NewTicker(dw.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return nil
			}
			dw.handle(event)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return nil
			}
			dw.logger.Warnf("definition watcher: %v", err)

		case <-ticker.C:
			if files := dw.drain(); len(files) > 0 {
				onChange(files)
			}
		}
	}
}

// Close - releases the underlying inotify handles
func (dw *DefinitionWatcher) Close() error {
	return dw.watcher.Close()
}

func (dw *DefinitionWatcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := dw.addTree(event.Name); err != nil {
				dw.logger.Warnf("definition watcher: cannot watch %s: %v", event.Name, err)
			}
			return
		}
	}

	if filepath.Ext(event.Name) != definitionExt {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	dw.logger.Debugf("definition watcher: %s %s", event.Op, event.Name)

	dw.mu.Lock()
	dw.pending[event.Name] |= event.Op
	dw.mu.Unlock()
}

func (dw *DefinitionWatcher) drain() []string {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if len(dw.pending) == 0 {
		return nil
	}
	files := make([]string, 0, len(dw.pending))
	for name := range dw.pending {
		files = append(files, name)
	}
	dw.pending = make(map[string]fsnotify.Op)
	return files
}

func (dw *DefinitionWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return dw.watcher.Add(path)
		}
		return nil
	})
}
