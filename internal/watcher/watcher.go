// Package watcher emits add/remove events for .torrent files dropped into
// a watched directory, buffering them so the orchestrator's tick loop can
// drain them synchronously with a single non-blocking Poll call.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventKind distinguishes a torrent file appearing from one disappearing.
type EventKind int

const (
	Added EventKind = iota
	Removed
)

// Event is one watcher notification.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher wraps fsnotify, filtering to ".torrent" files and translating its
// platform-specific event stream into the Added/Removed vocabulary the
// orchestrator understands.
type Watcher struct {
	dir string
	fsw *fsnotify.Watcher

	mu     sync.Mutex
	buffer []Event

	done chan struct{}
}

// New creates an unstarted Watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Start begins watching the directory. Events observed from here on are
// buffered until Poll is called.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop()
	return nil
}

// Stop releases the underlying OS watch.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case <-w.fsw.Errors:
			// Transient watcher errors are dropped; they never propagate.
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !hasTorrentExtension(ev.Name) {
		return
	}

	var kind EventKind
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind = Added
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = Removed
	default:
		return
	}

	w.mu.Lock()
	w.buffer = append(w.buffer, Event{Kind: kind, Path: ev.Name})
	w.mu.Unlock()
}

// Poll drains and returns every event buffered since the last call. It
// never blocks.
func (w *Watcher) Poll() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buffer) == 0 {
		return nil
	}
	out := w.buffer
	w.buffer = nil
	return out
}

// ScanExisting enumerates .torrent files already present in the watched
// directory, sorted lexicographically for deterministic ordering, and
// returns an Added event for each.
func (w *Watcher) ScanExisting() ([]Event, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if hasTorrentExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	events := make([]Event, 0, len(names))
	for _, name := range names {
		events = append(events, Event{Kind: Added, Path: filepath.Join(w.dir, name)})
	}
	return events, nil
}

func hasTorrentExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".torrent")
}
