package dict

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/milden6/ahocorasick"
)

// DefaultDebounce is how long the watcher waits after the last change to the
// file before reloading it. Editors often write a file several times per save.
const DefaultDebounce = 50 * time.Millisecond

// Watcher keeps an automaton in step with a dictionary file. Readers call
// Automaton and always get a complete automaton: either the one from before a
// change or the one after it.
type Watcher struct {
	path     string
	log      *slog.Logger
	fw       *fsnotify.Watcher
	current  atomic.Pointer[ahocorasick.Automaton]
	reloads  atomic.Int64
	Debounce time.Duration
}

// NewWatcher compiles the dictionary at path and starts watching it. The
// watch is released by Close, or when Run returns.
func NewWatcher(path string, log *slog.Logger) (*Watcher, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	a, err := Compile(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, since editors often replace the file rather than
	// write to it.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		log:      log.With("dict", path),
		fw:       fw,
		Debounce: DefaultDebounce,
	}
	w.current.Store(a)
	return w, nil
}

// Automaton returns the most recently compiled automaton.
func (w *Watcher) Automaton() *ahocorasick.Automaton {
	return w.current.Load()
}

// Reloads returns how many times the dictionary was recompiled successfully.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Close releases the watch. It may be called more than once, and also after
// Run has returned.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Run reloads the dictionary whenever it changes, until ctx is done. A
// dictionary that fails to load is logged and the previous automaton is kept.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.log.Debug("dictionary changed", "op", event.Op.String())
				timer.Reset(w.Debounce)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	a, err := Compile(w.path)
	if err != nil {
		w.log.Error("reload failed, keeping previous dictionary", "error", err)
		return
	}

	// Rewriting a file in place truncates it first. If the reload lands
	// between the truncate and the write, the next write event loads the
	// real contents.
	if a.NumPatterns() == 0 && w.current.Load().NumPatterns() > 0 {
		w.log.Warn("dictionary is empty, keeping previous dictionary")
		return
	}

	w.current.Store(a)
	w.reloads.Add(1)
	w.log.Info("dictionary reloaded",
		"patterns", a.NumPatterns(),
		"nodes", a.NumNodes())
}
