// Package boot wires the unlocker and the menu fader together in the order
// the page needs them: interception before anything can build a context,
// listeners before the first interaction, then the menu track.
package boot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ingyamilmolinar/unmute/internal/config"
	game_log "github.com/ingyamilmolinar/unmute/internal/log"
	"github.com/ingyamilmolinar/unmute/internal/menu"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

var ErrOutOfOrder = errors.New("boot: step out of order")

// Host is what a platform supplies to Run. Install and ExportReady may be
// nil when the platform has no global constructors or no page to export to.
type Host struct {
	Install     InstallFunc
	Target      func() (unlock.EventTarget, error)
	MenuTrack   func() (menu.Track, error)
	ExportReady func(name string, ready func()) (release func(), err error)
	// Every drives the fade timer. Nil uses menu.Every.
	Every       menu.EveryFunc
}

// InstallFunc replaces one global constructor and returns how to undo it.
type InstallFunc func(reg *unlock.Registry, name string) (restore func(), err error)

type Bootstrap struct {
	Registry *unlock.Registry
	Unlocker *unlock.Unlocker
	Fader    *menu.Fader

	cfg    config.Config
	logger *game_log.Logger

	mu      sync.Mutex
	closers []func()
	closed  bool
}

func New(cfg config.Config, logger *game_log.Logger) *Bootstrap {
	b := &Bootstrap{
		Registry: unlock.NewRegistry(),
		cfg:      cfg,
		logger:   logger.With("boot"),
	}
	b.Registry.OnTrack(func(t unlock.Tracked) {
		b.logger.Infof("audio context #%d created (%s)", t.Seq, t.ID)
	})
	return b
}

// Intercept installs every configured constructor hook. Constructors the
// host lacks are skipped with a log line; it fails only if none could be
// hooked.
func (b *Bootstrap) Intercept(install InstallFunc) error {
	if b.Unlocker != nil {
		return fmt.Errorf("%w: intercept after listen", ErrOutOfOrder)
	}
	hooked := 0
	var errs []error
	for _, name := range b.cfg.Unlock.Constructors {
		restore, err := install(b.Registry, name)
		if err != nil {
			b.logger.Warnf("cannot intercept %s: %v", name, err)
			errs = append(errs, err)
			continue
		}
		hooked++
		b.OnClose(restore)
	}
	if hooked == 0 && len(errs) > 0 {
		return fmt.Errorf("intercept audio constructors: %w", errors.Join(errs...))
	}
	return nil
}

// Listen installs the gesture listeners on target.
func (b *Bootstrap) Listen(target unlock.EventTarget) error {
	if b.Unlocker != nil {
		return nil
	}
	u := unlock.NewUnlocker(b.Registry, target, b.logger, b.cfg.Unlock.Events...)
	if err := u.Install(); err != nil {
		return fmt.Errorf("install gesture listeners: %w", err)
	}
	b.Unlocker = u
	b.OnClose(u.Shutdown)
	return nil
}

// StartMenu starts the placeholder track. A nil track means the element is
// missing: the fader then drives a silent stand-in.
func (b *Bootstrap) StartMenu(track menu.Track, every menu.EveryFunc) {
	if b.Fader != nil {
		return
	}
	if track == nil {
		b.logger.Warnf("menu track %q unavailable; continuing without it", b.cfg.Menu.Element)
		track = &menu.NopTrack{}
	}
	b.Fader = menu.NewFader(track, b.cfg.FadeSettings(), every, b.logger)
	b.Fader.Start()
	b.OnClose(b.Fader.Cancel)
}

// Ready is the hosted application's readiness signal. It retires the menu
// track and may be called any number of times.
func (b *Bootstrap) Ready() {
	if b.Fader == nil {
		b.logger.Warnf("ready signalled before the menu track started")
		return
	}
	b.Fader.FadeAndStop()
}

// OnClose registers fn to run on Close, in reverse registration order.
func (b *Bootstrap) OnClose(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closers = append(b.closers, fn)
}

// Close tears the page wiring down: the fade timer is cancelled, listeners
// removed and constructors restored.
func (b *Bootstrap) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

// Run brings the page up in order: constructor interception, gesture
// listeners, the menu track and the readiness hook. It then hands control
// to run and tears everything down once run returns.
func Run(b *Bootstrap, h Host, run func() error) error {
	defer b.Close()

	if h.Install != nil {
		if err := b.Intercept(h.Install); err != nil {
			// No audio constructors at all: nothing to unlock, keep going.
			b.logger.Warnf("%v", err)
		}
	}

	if h.Target == nil {
		return errors.New("boot: host has no gesture target")
	}
	target, err := h.Target()
	if err != nil {
		return fmt.Errorf("gesture target: %w", err)
	}
	if err := b.Listen(target); err != nil {
		return err
	}

	var track menu.Track
	if h.MenuTrack != nil {
		if t, err := h.MenuTrack(); err != nil {
			b.logger.Errorf("menu track: %v", err)
		} else {
			track = t
		}
	}
	b.StartMenu(track, h.Every)

	if name := b.cfg.Host.ReadyHook; h.ExportReady != nil && name != "" {
		release, err := h.ExportReady(name, b.Ready)
		if err != nil {
			b.logger.Warnf("export %s: %v", name, err)
		} else if release != nil {
			b.OnClose(release)
		}
	}

	if run == nil {
		return nil
	}
	return run()
}
