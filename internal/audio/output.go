package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/ingyamilmolinar/unmute/internal/pcm"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

var (
	ErrNoConstructor = errors.New("audio: constructor not found on window")
	ErrNoElement     = errors.New("audio: element not found")
	ErrNoDocument    = errors.New("audio: no document")
	ErrSampleRate    = errors.New("audio: clip sample rate differs from output")
)

// Output is the audio device the hosted application plays through. oto
// allows a single context per process, so it is opened once and shared.
type Output struct {
	ctx        *oto.Context
	ready      chan struct{}
	sampleRate int
}

var (
	once   sync.Once
	output *Output
	outErr error
)

// Open returns the shared Output, creating it on the first call. The
// context is registered with reg so gestures can resume it.
func Open(reg *unlock.Registry, sampleRate int) (*Output, error) {
	once.Do(func() { output, outErr = open(reg, sampleRate) })
	return output, outErr
}

func contextOptions(sampleRate int) *oto.NewContextOptions {
	return &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
}

// Ready is closed once the device can produce sound. In a browser that
// only happens after a gesture resumed the context.
func (o *Output) Ready() <-chan struct{} { return o.ready }

func (o *Output) SampleRate() int { return o.sampleRate }

// Err reports a device failure after creation.
func (o *Output) Err() error { return o.ctx.Err() }

// PlayerTrack plays a looping clip through the Output. It satisfies
// menu.Track.
type PlayerTrack struct {
	out    *Output
	loop   *pcm.Loop
	player *oto.Player
}

// LoopTrack prepares clip for looping playback. The clip must be stereo
// S16LE at the output's rate.
func (o *Output) LoopTrack(clip *pcm.Clip) (*PlayerTrack, error) {
	if clip.SampleRate != o.sampleRate {
		return nil, fmt.Errorf("%w: %d Hz clip, %d Hz output", ErrSampleRate, clip.SampleRate, o.sampleRate)
	}
	clip = pcm.Stereo(clip)
	if clip.Channels != 2 {
		return nil, fmt.Errorf("audio: %d-channel clip not supported", clip.Channels)
	}
	loop := pcm.NewLoop(clip)
	return &PlayerTrack{out: o, loop: loop, player: o.ctx.NewPlayer(loop)}, nil
}

func (t *PlayerTrack) Volume() float64 { return t.player.Volume() }

func (t *PlayerTrack) SetVolume(v float64) { t.player.SetVolume(v) }

func (t *PlayerTrack) SetLoop(loop bool) { t.loop.SetLoop(loop) }

func (t *PlayerTrack) Play() error {
	if err := t.out.Err(); err != nil {
		return err
	}
	t.player.Play()
	return nil
}

func (t *PlayerTrack) Pause() { t.player.Pause() }
