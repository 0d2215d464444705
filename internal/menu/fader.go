// Package menu owns the placeholder menu track: it starts it looping at page
// load and retires it with a stepped fade once the hosted application takes
// over audio.
package menu

import (
	"context"
	"fmt"
	"sync"
	"time"

	game_log "github.com/ingyamilmolinar/unmute/internal/log"
)

// Track is the placeholder audio element.
type Track interface {
	Volume() float64
	SetVolume(v float64)
	SetLoop(loop bool)
	Play() error
	Pause()
}

// Settings control the start level and the fade curve.
type Settings struct {
	InitialVolume float64
	Step          float64
	// Floor is the level at or below which the fade snaps to silence.
	Floor    float64
	Interval time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		InitialVolume: 0.6,
		Step:          0.1,
		Floor:         0.11,
		Interval:      200 * time.Millisecond,
	}
}

// EveryFunc calls fn every d until stop is called. Calls must not overlap.
type EveryFunc func(d time.Duration, fn func()) (stop func())

// Every is the EveryFunc backed by a time.Ticker on its own goroutine.
func Every(d time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel
}

type Fader struct {
	track    Track
	settings Settings
	every    EveryFunc
	logger   *game_log.Logger

	mu      sync.Mutex
	level   float64
	started bool
	run     *fadeRun
	retired bool
	done    chan struct{}
}

type fadeRun struct {
	stop  func()
	ticks int
}

func NewFader(track Track, s Settings, every EveryFunc, logger *game_log.Logger) *Fader {
	if every == nil {
		every = Every
	}
	return &Fader{
		track:    track,
		settings: s,
		every:    every,
		logger:   logger.With("menu"),
		done:     make(chan struct{}),
	}
}

// Start sets the initial volume and begins looping playback. A rejected
// play request is logged; the page keeps running.
func (f *Fader) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = f.settings.InitialVolume
	f.started = true
	if err := guard(func() {
		f.track.SetVolume(f.level)
		f.track.SetLoop(true)
	}); err != nil {
		f.logger.Errorf("configure menu track: %v", err)
	}
	var playErr error
	if err := guard(func() { playErr = f.track.Play() }); err != nil {
		playErr = err
	}
	if playErr != nil {
		f.logger.Warnf("menu track did not start: %v", playErr)
		return
	}
	f.logger.Debugf("menu track looping at volume %.2f", f.level)
}

// FadeAndStop starts the fade unless one is already running or the track
// was already retired.
func (f *Fader) FadeAndStop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run != nil || f.retired {
		return
	}
	if !f.started {
		if err := guard(func() { f.level = f.track.Volume() }); err != nil {
			f.logger.Warnf("read menu track volume: %v", err)
		}
	}
	run := &fadeRun{}
	f.run = run
	run.stop = f.every(f.settings.Interval, func() { f.tick(run) })
	f.logger.Infof("fading out menu track from %.2f", f.level)
}

func (f *Fader) tick(run *fadeRun) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.run != run {
		return
	}
	run.ticks++
	// The floor check runs even when lowering the volume blew up, so the
	// timer can never stay armed.
	defer func() {
		if f.level <= f.settings.Floor {
			f.silenceLocked(run)
		}
	}()
	f.level -= f.settings.Step
	if err := guard(func() { f.track.SetVolume(f.level) }); err != nil {
		f.logger.Errorf("lower menu volume to %.2f: %v", f.level, err)
	}
}

func (f *Fader) silenceLocked(run *fadeRun) {
	f.level = 0
	if err := guard(func() {
		f.track.SetVolume(0)
		f.track.Pause()
	}); err != nil {
		f.logger.Errorf("stop menu track: %v", err)
	}
	f.stopLocked()
	f.retired = true
	close(f.done)
	f.logger.Infof("menu track stopped after %d fade steps", run.ticks)
}

func (f *Fader) stopLocked() {
	if f.run == nil {
		return
	}
	if f.run.stop != nil {
		f.run.stop()
	}
	f.run = nil
}

// Cancel stops an in-flight fade without silencing the track. Used on page
// teardown.
func (f *Fader) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

// Fading reports whether a fade timer is armed.
func (f *Fader) Fading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.run != nil
}

// Level returns the volume the fader last applied.
func (f *Fader) Level() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Done is closed once the track has been faded to silence and paused.
func (f *Fader) Done() <-chan struct{} { return f.done }

func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// NopTrack stands in when the placeholder element is missing. Every call
// succeeds and nothing is heard.
type NopTrack struct{ volume float64 }

func (t *NopTrack) Volume() float64     { return t.volume }
func (t *NopTrack) SetVolume(v float64) { t.volume = v }
func (t *NopTrack) SetLoop(bool)        {}
func (t *NopTrack) Play() error         { return nil }
func (t *NopTrack) Pause()              {}
