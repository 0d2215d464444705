//go:build !js

package main

import (
	"github.com/ingyamilmolinar/unmute/internal/audio"
	"github.com/ingyamilmolinar/unmute/internal/boot"
	"github.com/ingyamilmolinar/unmute/internal/config"
	"github.com/ingyamilmolinar/unmute/internal/game"
	"github.com/ingyamilmolinar/unmute/internal/input"
	game_log "github.com/ingyamilmolinar/unmute/internal/log"
	"github.com/ingyamilmolinar/unmute/internal/menu"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

func loadConfig() (config.Config, error) { return config.LoadFile() }

// newHost on desktop has no global constructors to hook: the audio device
// is built through the registry by audio.Open, and gestures come from
// ebiten input polled by the game.
func newHost(cfg config.Config, b *boot.Bootstrap, logger *game_log.Logger) (boot.Host, game.Options) {
	gestures := input.NewDispatcher()
	openAudio := func() (*audio.Output, error) {
		return audio.Open(b.Registry, cfg.Host.SampleRate)
	}
	host := boot.Host{
		Target: func() (unlock.EventTarget, error) { return gestures, nil },
		MenuTrack: func() (menu.Track, error) {
			out, err := openAudio()
			if err != nil {
				return nil, err
			}
			return out.OpenMenuFile(cfg.Menu.Source)
		},
	}
	return host, game.Options{
		Width:  cfg.Host.Width,
		Height: cfg.Host.Height,
		Input:  gestures,
		Logger: logger,
		OpenAudio: func() error {
			_, err := openAudio()
			return err
		},
	}
}
