// Package watch reports source files that appear or change under a root
// directory, skipping ignored paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Kind distinguishes a file seen for the first time from a modified one.
type Kind int

const (
	// Add is a file found by the initial scan or newly created.
	Add Kind = iota + 1
	// Change is a write to a file already known.
	Change
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// Event is a file event.
type Event struct {
	Path string
	Kind Kind
}

// Handler receives events on the goroutine that found them.
type Handler func(Event)

// Ignorer decides whether a path is skipped.
type Ignorer interface {
	Ignored(path string, isDir bool) bool
}

// Scan walks root and emits Add for every file that is not ignored. Ignored
// directories are not descended into.
func Scan(root string, ign Ignorer, handle Handler) error {
	return walk(root, ign, func(path string, d fs.DirEntry) error {
		if d.Type().IsRegular() {
			handle(Event{Path: path, Kind: Add})
		}
		return nil
	})
}

// Watcher watches every non-ignored directory under a root.
type Watcher struct {
	root string
	ign  Ignorer
	fsw  *fsnotify.Watcher
}

// New starts watching root recursively. Directories created later are added
// as they appear.
func New(root string, ign Ignorer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{root: root, ign: ign, fsw: fsw}
	if err := w.addTree(root, nil); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers events until ctx is cancelled or the watcher is closed.
// Watch errors go to onError, which may be nil; they do not stop Run.
func (w *Watcher) Run(ctx context.Context, handle Handler, onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if err := w.dispatch(ev, handle); err != nil && onError != nil {
				onError(err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close stops the watcher. Run returns once Close has been called.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

func (w *Watcher) dispatch(ev fsnotify.Event, handle Handler) error {
	ev.Name = filepath.Clean(ev.Name)
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if w.ign.Ignored(ev.Name, true) {
				return nil
			}
			// Files created before the watch was in place are reported here.
			return w.addTree(ev.Name, handle)
		}
		if info.Mode().IsRegular() && !w.ign.Ignored(ev.Name, false) {
			handle(Event{Path: ev.Name, Kind: Add})
		}
	case ev.Has(fsnotify.Write):
		if !w.ign.Ignored(ev.Name, false) {
			handle(Event{Path: ev.Name, Kind: Change})
		}
	}
	return nil
}

// addTree watches dir and its non-ignored subdirectories. When handle is set,
// files found are reported as Add.
func (w *Watcher) addTree(dir string, handle Handler) error {
	return walk(dir, w.ign, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			return nil
		}
		if handle != nil && d.Type().IsRegular() {
			handle(Event{Path: path, Kind: Add})
		}
		return nil
	})
}

func walk(root string, ign Ignorer, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if path != root && ign.Ignored(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path, d)
	})
}
