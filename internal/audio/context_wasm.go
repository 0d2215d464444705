//go:build js && wasm

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"

	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

// open builds the oto context. window.AudioContext is already intercepted
// by the time this runs, so the Web Audio context oto creates underneath
// lands in the registry through the Proxy, not here.
func open(_ *unlock.Registry, sampleRate int) (*Output, error) {
	ctx, ready, err := oto.NewContext(contextOptions(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("open audio context: %w", err)
	}
	return &Output{ctx: ctx, ready: ready, sampleRate: sampleRate}, nil
}
