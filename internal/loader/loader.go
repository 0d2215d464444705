// Package loader tracks the hosted application's loading steps and produces
// the one-shot readiness signal that retires the menu track.
package loader

import (
	"fmt"
	"sync"
)

type Loader struct {
	mu      sync.Mutex
	pending map[string]bool
	order   []string
	loaded  int
	ready   bool
	onReady []func()
}

// New creates a loader that becomes ready once every named step is done.
// With no steps it is ready on the first call to Done or Poll.
func New(steps ...string) *Loader {
	l := &Loader{pending: map[string]bool{}}
	for _, s := range steps {
		if !l.pending[s] {
			l.pending[s] = true
			l.order = append(l.order, s)
		}
	}
	return l
}

// OnReady registers fn to run once when loading completes. Registering after
// completion runs fn immediately.
func (l *Loader) OnReady(fn func()) {
	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		fn()
		return
	}
	l.onReady = append(l.onReady, fn)
	l.mu.Unlock()
}

// Done marks step as loaded. Unknown steps are an error; repeats are not.
func (l *Loader) Done(step string) error {
	l.mu.Lock()
	done, known := l.pending[step]
	if !known {
		l.mu.Unlock()
		return fmt.Errorf("loader: unknown step %q", step)
	}
	if done {
		l.pending[step] = false
		l.loaded++
	}
	l.mu.Unlock()
	l.Poll()
	return nil
}

// Poll fires the ready callbacks if nothing is pending. It reports whether
// the loader is ready.
func (l *Loader) Poll() bool {
	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		return true
	}
	if l.loaded < len(l.order) {
		l.mu.Unlock()
		return false
	}
	l.ready = true
	fns := l.onReady
	l.onReady = nil
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return true
}

// Progress returns loaded and total step counts.
func (l *Loader) Progress() (loaded, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded, len(l.order)
}

// Pending lists the steps still outstanding, in declaration order.
func (l *Loader) Pending() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, s := range l.order {
		if l.pending[s] {
			out = append(out, s)
		}
	}
	return out
}
