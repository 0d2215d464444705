//go:build !js

package audio

import (
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/ingyamilmolinar/unmute/internal/pcm"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

// deviceContext reports oto's device lifecycle in Web Audio terms.
type deviceContext struct {
	ctx   *oto.Context
	ready chan struct{}

	mu    sync.Mutex
	state unlock.State
}

func newDeviceContext(sampleRate int) (*deviceContext, error) {
	ctx, ready, err := oto.NewContext(contextOptions(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	dc := &deviceContext{ctx: ctx, ready: ready, state: unlock.StateSuspended}
	go func() {
		<-ready
		dc.set(unlock.StateRunning)
	}()
	return dc, nil
}

func (c *deviceContext) set(s unlock.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *deviceContext) State() unlock.State {
	if c.ctx.Err() != nil {
		return unlock.StateClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *deviceContext) Resume() error {
	if err := c.ctx.Resume(); err != nil {
		return err
	}
	c.set(unlock.StateRunning)
	return nil
}

// open routes the device construction through the registry so the
// unlocker sees it like any page-created context.
func open(reg *unlock.Registry, sampleRate int) (*Output, error) {
	construct := unlock.Wrap(reg, newDeviceContext)
	dc, err := construct(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Output{ctx: dc.ctx, ready: dc.ready, sampleRate: sampleRate}, nil
}

// OpenMenuFile decodes the WAV at path into a looping track on o.
func (o *Output) OpenMenuFile(path string) (*PlayerTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoElement, err)
	}
	defer f.Close()
	clip, err := pcm.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("menu track %s: %w", path, err)
	}
	return o.LoopTrack(clip)
}
