package boot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingyamilmolinar/unmute/internal/config"
	"github.com/ingyamilmolinar/unmute/internal/input"
	"github.com/ingyamilmolinar/unmute/internal/menu"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

type stubContext struct {
	state   unlock.State
	resumes int
}

func (c *stubContext) State() unlock.State { return c.state }

func (c *stubContext) Resume() error {
	c.resumes++
	c.state = unlock.StateRunning
	return nil
}

// fakeHost keeps a table of "global constructors" the way window does.
type fakeHost struct {
	ctors    map[string]func() unlock.Context
	restored []string
}

func (h *fakeHost) install(reg *unlock.Registry, name string) (func(), error) {
	orig, ok := h.ctors[name]
	if !ok {
		return nil, errors.New("undefined")
	}
	h.ctors[name] = func() unlock.Context { return reg.Track(orig()) }
	return func() {
		h.ctors[name] = orig
		h.restored = append(h.restored, name)
	}, nil
}

type volumeTrack struct {
	v       float64
	playing bool
}

func (t *volumeTrack) Volume() float64     { return t.v }
func (t *volumeTrack) SetVolume(v float64) { t.v = v }
func (t *volumeTrack) SetLoop(bool)        {}
func (t *volumeTrack) Play() error         { t.playing = true; return nil }
func (t *volumeTrack) Pause()              { t.playing = false }

type stepTimer struct{ fn func() }

func (s *stepTimer) every(_ time.Duration, fn func()) func() {
	s.fn = fn
	return func() { s.fn = nil }
}

func defaults(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load(nil, "")
	require.NoError(t, err)
	return cfg
}

func TestFullPageLifecycle(t *testing.T) {
	cfg := defaults(t)
	host := &fakeHost{ctors: map[string]func() unlock.Context{
		"AudioContext": func() unlock.Context { return &stubContext{state: unlock.StateSuspended} },
	}}
	doc := input.NewDispatcher()
	track := &volumeTrack{}
	timer := &stepTimer{}

	b := New(cfg, nil)
	require.NoError(t, b.Intercept(host.install))
	require.NoError(t, b.Listen(doc))
	b.StartMenu(track, timer.every)
	require.Equal(t, 0.6, track.v)
	require.True(t, track.playing)

	// The hosted app builds its context through the hooked constructor.
	ctx := host.ctors["AudioContext"]().(*stubContext)
	require.Equal(t, 1, b.Registry.Len())

	doc.Dispatch("click")
	require.Equal(t, unlock.StateRunning, ctx.state)
	require.True(t, b.Unlocker.Installed())
	doc.Dispatch("keydown")
	require.False(t, b.Unlocker.Installed())

	b.Ready()
	b.Ready()
	ticks := 0
	for timer.fn != nil {
		timer.fn()
		ticks++
	}
	require.Equal(t, 5, ticks)
	require.Equal(t, 0.0, track.v)
	require.False(t, track.playing)

	b.Close()
	require.Equal(t, []string{"AudioContext"}, host.restored)
	b.Close()
	require.Len(t, host.restored, 1)
}

func TestInterceptToleratesMissingPrefixedConstructor(t *testing.T) {
	host := &fakeHost{ctors: map[string]func() unlock.Context{
		"AudioContext": func() unlock.Context { return &stubContext{} },
	}}
	b := New(defaults(t), nil)
	require.NoError(t, b.Intercept(host.install))
}

func TestInterceptFailsWhenNothingHooked(t *testing.T) {
	host := &fakeHost{ctors: map[string]func() unlock.Context{}}
	b := New(defaults(t), nil)
	require.Error(t, b.Intercept(host.install))
}

func TestInterceptAfterListenIsRejected(t *testing.T) {
	b := New(defaults(t), nil)
	require.NoError(t, b.Listen(input.NewDispatcher()))
	err := b.Intercept(func(*unlock.Registry, string) (func(), error) { return func() {}, nil })
	require.ErrorIs(t, err, ErrOutOfOrder)
}

func TestMissingMenuTrackFallsBackSilently(t *testing.T) {
	b := New(defaults(t), nil)
	timer := &stepTimer{}
	require.NotPanics(t, func() { b.StartMenu(nil, timer.every) })
	b.Ready()
	for timer.fn != nil {
		timer.fn()
	}
	select {
	case <-b.Fader.Done():
	default:
		t.Fatalf("fade did not complete on stand-in track")
	}
}

func TestReadyBeforeStartIsHarmless(t *testing.T) {
	b := New(defaults(t), nil)
	require.NotPanics(t, b.Ready)
}

func TestCloseCancelsFadeAndRemovesListeners(t *testing.T) {
	b := New(defaults(t), nil)
	doc := input.NewDispatcher()
	require.NoError(t, b.Listen(doc))
	timer := &stepTimer{}
	b.StartMenu(&volumeTrack{}, timer.every)
	b.Ready()
	require.NotNil(t, timer.fn)

	b.Close()
	require.Nil(t, timer.fn)
	require.Equal(t, 0, doc.Count())
	require.False(t, b.Fader.Fading())
}

// orderedHost records the order Run calls into the platform.
type orderedHost struct {
	calls    []string
	doc      *input.Dispatcher
	track    *volumeTrack
	timer    *stepTimer
	ready    func()
	released bool
}

func newOrderedHost() *orderedHost {
	return &orderedHost{doc: input.NewDispatcher(), track: &volumeTrack{}, timer: &stepTimer{}}
}

func (h *orderedHost) host() Host {
	return Host{
		Install: func(*unlock.Registry, string) (func(), error) {
			h.calls = append(h.calls, "install")
			return func() { h.calls = append(h.calls, "restore") }, nil
		},
		Target: func() (unlock.EventTarget, error) {
			h.calls = append(h.calls, "target")
			return h.doc, nil
		},
		MenuTrack: func() (menu.Track, error) {
			h.calls = append(h.calls, "track")
			return h.track, nil
		},
		ExportReady: func(name string, ready func()) (func(), error) {
			h.calls = append(h.calls, "export:"+name)
			h.ready = ready
			return func() { h.released = true }, nil
		},
		Every: h.timer.every,
	}
}

func TestRunBringsPageUpInOrder(t *testing.T) {
	h := newOrderedHost()
	b := New(defaults(t), nil)

	err := Run(b, h.host(), func() error {
		h.calls = append(h.calls, "run")
		require.True(t, b.Unlocker.Installed())
		require.True(t, h.track.playing)
		require.Equal(t, 0.6, h.track.v)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"install", "install",
		"target", "track", "export:menuMusicFadeAndStop",
		"run",
		"restore", "restore",
	}, h.calls)
	require.True(t, h.released)
	require.Equal(t, 0, h.doc.Count())
}

func TestRunReadyHookFadesMenuTrack(t *testing.T) {
	h := newOrderedHost()
	b := New(defaults(t), nil)

	require.NoError(t, Run(b, h.host(), func() error {
		require.NotNil(t, h.ready)
		h.ready()
		h.ready()
		ticks := 0
		for h.timer.fn != nil {
			h.timer.fn()
			ticks++
		}
		require.Equal(t, 5, ticks)
		return nil
	}))
	require.Equal(t, 0.0, h.track.v)
	require.False(t, h.track.playing)
}

func TestRunStopsBeforeRunWhenTargetFails(t *testing.T) {
	h := newOrderedHost()
	host := h.host()
	host.Target = func() (unlock.EventTarget, error) { return nil, errors.New("no document") }
	ran := false

	err := Run(New(defaults(t), nil), host, func() error { ran = true; return nil })
	require.Error(t, err)
	require.False(t, ran)
	require.Equal(t, []string{"install", "install", "restore", "restore"}, h.calls)
}

func TestRunSurvivesMissingPieces(t *testing.T) {
	h := newOrderedHost()
	host := Host{
		// Desktop: no constructors and no page to export to.
		Target: func() (unlock.EventTarget, error) { return h.doc, nil },
		MenuTrack: func() (menu.Track, error) {
			return nil, errors.New("menu.wav missing")
		},
		Every: h.timer.every,
	}
	b := New(defaults(t), nil)
	runErr := errors.New("window closed")

	err := Run(b, host, func() error {
		require.True(t, b.Unlocker.Installed())
		require.NotNil(t, b.Fader)
		return runErr
	})
	require.ErrorIs(t, err, runErr)
}

func TestRunRejectsHostWithoutTarget(t *testing.T) {
	require.Error(t, Run(New(defaults(t), nil), Host{}, nil))
}
