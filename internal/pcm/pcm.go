// Package pcm turns the menu track asset into a signed 16-bit little-endian
// stream that an audio output can loop forever.
package pcm

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("pcm: not a valid WAV file")

// Clip is decoded interleaved S16LE audio.
type Clip struct {
	SampleRate int
	Channels   int
	Data       []byte
}

// DecodeWAV reads a whole PCM WAV file. Samples wider than 16 bits are
// scaled down.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, ErrNotWAV
	}
	shift := 0
	if depth := int(dec.BitDepth); depth > 16 {
		shift = depth - 16
	}
	data := make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		v := int16(s >> shift)
		if dec.BitDepth == 8 {
			// 8-bit WAV is unsigned.
			v = int16((s - 128) << 8)
		}
		data[2*i] = byte(v)
		data[2*i+1] = byte(v >> 8)
	}
	return &Clip{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Data:       data,
	}, nil
}

// Loop reads a clip from the start again whenever it runs out. Looping can
// be switched off, after which the reader ends at the clip's end.
type Loop struct {
	mu   sync.Mutex
	data []byte
	pos  int
	loop bool
}

func NewLoop(c *Clip) *Loop { return &Loop{data: c.Data, loop: true} }

func (l *Loop) SetLoop(loop bool) {
	l.mu.Lock()
	l.loop = loop
	l.mu.Unlock()
}

// Read implements io.Reader.
func (l *Loop) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.data) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		if l.pos >= len(l.data) {
			if !l.loop {
				break
			}
			l.pos = 0
		}
		c := copy(p[n:], l.data[l.pos:])
		l.pos += c
		n += c
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Stereo duplicates a mono clip into both channels. Other clips are
// returned as is.
func Stereo(c *Clip) *Clip {
	if c.Channels != 1 {
		return c
	}
	out := make([]byte, len(c.Data)*2)
	for i := 0; i+1 < len(c.Data); i += 2 {
		copy(out[2*i:], c.Data[i:i+2])
		copy(out[2*i+2:], c.Data[i:i+2])
	}
	return &Clip{SampleRate: c.SampleRate, Channels: 2, Data: out}
}
