package unlock

import (
	"errors"
	"fmt"
	"sync"

	game_log "github.com/ingyamilmolinar/unmute/internal/log"
)

// GestureEvents are the document-level event types browsers accept as
// consent to start audio.
var GestureEvents = []string{
	"click",
	"contextmenu",
	"auxclick",
	"dblclick",
	"mousedown",
	"mouseup",
	"pointerdown",
	"pointerup",
	"touchend",
	"keydown",
	"keyup",
}

var ErrShutdown = errors.New("unlock: gesture listeners already shut down")

// EventTarget is where gesture listeners are bound, normally the document.
type EventTarget interface {
	Listen(eventType string, fn func(eventType string)) (remove func(), err error)
}

// Pass summarizes one resume pass.
type Pass struct {
	Total          int
	AlreadyRunning int
	Resumed        int
	Failed         int
	Shutdown       bool
}

// Unlocker resumes every tracked context on user gestures and removes its
// own listeners once a gesture finds everything already running.
type Unlocker struct {
	reg    *Registry
	target EventTarget
	events []string
	logger *game_log.Logger

	mu       sync.Mutex
	removers []func()
	shutdown bool
	passes   int
}

func NewUnlocker(reg *Registry, target EventTarget, logger *game_log.Logger, events ...string) *Unlocker {
	if len(events) == 0 {
		events = GestureEvents
	}
	return &Unlocker{
		reg:    reg,
		target: target,
		events: append([]string(nil), events...),
		logger: logger.With("unlock"),
	}
}

// Install binds a listener for every gesture event. Either all of them end
// up bound or none do.
func (u *Unlocker) Install() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.shutdown {
		return ErrShutdown
	}
	if u.removers != nil {
		return nil
	}
	removers := make([]func(), 0, len(u.events))
	for _, ev := range u.events {
		remove, err := u.target.Listen(ev, u.onEvent)
		if err != nil {
			for _, r := range removers {
				safeCall(r)
			}
			return fmt.Errorf("listen %q: %w", ev, err)
		}
		removers = append(removers, remove)
	}
	u.removers = removers
	u.logger.Debugf("listening for %d gesture event types", len(removers))
	return nil
}

func (u *Unlocker) onEvent(eventType string) { u.HandleGesture(eventType) }

// Installed reports whether the gesture listeners are currently bound.
func (u *Unlocker) Installed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.removers != nil
}

// HandleGesture runs one resume pass. Contexts that are not running get a
// single Resume request. When at least one context exists and all of them
// were already running before this pass, the listeners are removed for good.
func (u *Unlocker) HandleGesture(eventType string) Pass {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.shutdown {
		return Pass{Shutdown: true}
	}
	u.passes++

	tracked := u.reg.Snapshot()
	p := Pass{Total: len(tracked)}
	for _, t := range tracked {
		if stateOf(t.Context) == StateRunning {
			p.AlreadyRunning++
			continue
		}
		if err := resume(t.Context); err != nil {
			p.Failed++
			u.logger.Warnf("resume context #%d (%s): %v", t.Seq, t.ID, err)
			continue
		}
		p.Resumed++
	}

	if p.AlreadyRunning > 0 && p.AlreadyRunning == p.Total {
		u.shutdownLocked()
		p.Shutdown = true
		u.logger.Infof("all %d audio contexts running after %d gestures; listeners removed (last: %s)", p.Total, u.passes, eventType)
	} else if p.Resumed > 0 {
		u.logger.Debugf("%s: requested resume of %d/%d contexts", eventType, p.Resumed, p.Total)
	}
	return p
}

// Shutdown removes every listener. It is permanent and safe to call more
// than once.
func (u *Unlocker) Shutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.shutdownLocked()
}

func (u *Unlocker) shutdownLocked() {
	if u.shutdown {
		return
	}
	u.shutdown = true
	for _, r := range u.removers {
		safeCall(r)
	}
	u.removers = nil
}

func stateOf(c Context) (s State) {
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()
	return c.State()
}

func resume(c Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Resume()
}

func safeCall(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
