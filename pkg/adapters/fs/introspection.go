package fs

import (
	"github.com/aretw0/introspection"
)

// WatcherState exposes internal watcher state for observability.
type WatcherState struct {
	Root     string `json:"root"`
	Pattern  string `json:"pattern"`
	Active   bool   `json:"active"`
	Handled  int    `json:"handled"`
	Failed   int    `json:"failed"`
	Settling int    `json:"settling"`
}

// watcherView adapts a WatchWorker to introspection. WatchWorker.State is
// taken by the lifecycle worker contract.
type watcherView struct {
	w *WatchWorker
}

// Introspect returns an introspection view of the watcher.
func (w *WatchWorker) Introspect() introspection.Introspectable {
	return watcherView{w: w}
}

// State implements introspection.Introspectable.
func (v watcherView) State() any {
	v.w.mu.RLock()
	state := WatcherState{
		Root:    v.w.config.Root,
		Pattern: v.w.config.Pattern,
		Active:  v.w.active,
		Handled: v.w.handled,
		Failed:  v.w.failed,
	}
	v.w.mu.RUnlock()

	if d := v.w.debouncer; d != nil {
		d.mu.Lock()
		state.Settling = len(d.timers)
		d.mu.Unlock()
	}
	return state
}

// ComponentType implements introspection.Component.
func (v watcherView) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = watcherView{}
var _ introspection.Component = watcherView{}
