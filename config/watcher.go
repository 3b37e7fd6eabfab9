package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher implements ConfigReloader over an fsnotify watch on a single
// config file, re-loading HubConfig on writes and reporting which fields
// actually changed. Only fields named in IsMutable are applied to live;
// a change to an immutable field (CompletionWorkers, wrapper-type-adjacent
// settings) is neither applied nor reported to the callback, the same
// late-set guard WrapperType uses.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching bool
	current  *HubConfig
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher constructs a Watcher for the config file at path, loading its
// initial contents into current.
func NewWatcher(path string) (*Watcher, error) {
	current, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, current: current}, nil
}

// Current returns the most recently applied HubConfig.
func (w *Watcher) Current() *HubConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// StartWatch implements ConfigReloader: begins watching the config file,
// invoking callback with the set of changes on every reload that produces
// at least one mutable-field change.
func (w *Watcher) StartWatch(ctx context.Context, callback ReloadCallback) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := fw.Add(w.path); err != nil {
		_ = fw.Close()
		w.mu.Unlock()
		return fmt.Errorf("config watcher: watching %s: %w", w.path, err)
	}
	w.watcher = fw
	w.watching = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(ctx, callback)
	return nil
}

// StopWatch implements ConfigReloader: stops the fsnotify watch and waits
// for the watch loop to exit.
func (w *Watcher) StopWatch(_ context.Context) error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return nil
	}
	close(w.stop)
	fw := w.watcher
	w.watching = false
	w.mu.Unlock()

	<-w.done
	return fw.Close()
}

// IsWatching implements ConfigReloader.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

func (w *Watcher) loop(ctx context.Context, callback ReloadCallback) {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload(ctx, callback)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err // surfaced only via callback-less best-effort reload; no logger dependency here
		}
	}
}

func (w *Watcher) reload(ctx context.Context, callback ReloadCallback) {
	next, err := Load(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	prev := w.current
	changes := diffMutable(prev, next)
	if len(changes) > 0 {
		merged := *prev
		merged.DebugServerAddr = next.DebugServerAddr
		merged.HistoryEvictionInterval = next.HistoryEvictionInterval
		merged.HistoryRetention = next.HistoryRetention
		merged.PreprocessorsEnabled = next.PreprocessorsEnabled
		merged.SharedStateSweepInterval = next.SharedStateSweepInterval
		w.current = &merged
	}
	w.mu.Unlock()

	if len(changes) > 0 && callback != nil {
		_ = callback(ctx, changes)
	}
}

func diffMutable(prev, next *HubConfig) []*ConfigChange {
	var changes []*ConfigChange
	add := func(field string, oldV, newV interface{}) {
		if !IsMutable(field) || oldV == newV {
			return
		}
		changes = append(changes, &ConfigChange{FieldPath: field, OldValue: oldV, NewValue: newV, Source: "file", Timestamp: time.Now()})
	}
	add("DebugServerAddr", prev.DebugServerAddr, next.DebugServerAddr)
	add("HistoryEvictionInterval", prev.HistoryEvictionInterval, next.HistoryEvictionInterval)
	add("HistoryRetention", prev.HistoryRetention, next.HistoryRetention)
	add("PreprocessorsEnabled", prev.PreprocessorsEnabled, next.PreprocessorsEnabled)
	add("SharedStateSweepInterval", prev.SharedStateSweepInterval, next.SharedStateSweepInterval)
	return changes
}
