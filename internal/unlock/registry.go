package unlock

import (
	"sync"

	"github.com/google/uuid"
)

// State is the activation state a host reports for an audio-output context.
type State string

const (
	StateSuspended State = "suspended"
	StateRunning   State = "running"
	StateClosed    State = "closed"
)

// Context is the host's audio-output context as seen by the unlocker.
type Context interface {
	State() State
	// Resume requests activation. Completion is asynchronous; the error
	// reports only failures that happen while issuing the request.
	Resume() error
}

// Tracked is one registry entry. The registry never owns Context.
type Tracked struct {
	Seq     int
	// ID tags the entry in log lines so one context can be followed across
	// reloads, where Seq restarts from zero.
	ID      uuid.UUID
	Context Context
}

// Registry is the append-only list of every context constructed while the
// page is alive.
type Registry struct {
	mu      sync.Mutex
	tracked []Tracked
	onTrack func(Tracked)
}

func NewRegistry() *Registry { return &Registry{} }

// OnTrack installs a hook called after each context is appended.
func (r *Registry) OnTrack(fn func(Tracked)) {
	r.mu.Lock()
	r.onTrack = fn
	r.mu.Unlock()
}

// Track appends c and returns it unchanged.
func (r *Registry) Track(c Context) Context {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	t := Tracked{Seq: len(r.tracked), ID: uuid.New(), Context: c}
	r.tracked = append(r.tracked, t)
	hook := r.onTrack
	r.mu.Unlock()
	if hook != nil {
		hook(t)
	}
	return c
}

// Len returns the number of contexts tracked so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracked)
}

// Snapshot returns the entries in creation order.
func (r *Registry) Snapshot() []Tracked {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Tracked(nil), r.tracked...)
}

// Wrap returns a constructor that behaves exactly like construct but
// records every context it successfully builds. Call sites route through
// the returned function instead of construct.
func Wrap[A any, C Context](r *Registry, construct func(A) (C, error)) func(A) (C, error) {
	return func(args A) (C, error) {
		c, err := construct(args)
		if err != nil {
			return c, err
		}
		r.Track(c)
		return c, nil
	}
}
