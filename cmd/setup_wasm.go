//go:build js && wasm

package main

import (
	"strings"
	"syscall/js"

	"github.com/ingyamilmolinar/unmute/internal/audio"
	"github.com/ingyamilmolinar/unmute/internal/boot"
	"github.com/ingyamilmolinar/unmute/internal/config"
	"github.com/ingyamilmolinar/unmute/internal/game"
	game_log "github.com/ingyamilmolinar/unmute/internal/log"
	"github.com/ingyamilmolinar/unmute/internal/menu"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

// loadConfig reads overrides from window.unmuteConfig, a JSON string the
// page may define before loading the module.
func loadConfig() (config.Config, error) {
	raw := js.Global().Get("unmuteConfig")
	if raw.Type() == js.TypeString {
		return config.Load(strings.NewReader(raw.String()), "json")
	}
	return config.Load(nil, "")
}

func newHost(cfg config.Config, b *boot.Bootstrap, logger *game_log.Logger) (boot.Host, game.Options) {
	host := boot.Host{
		Install: func(reg *unlock.Registry, name string) (func(), error) {
			return audio.InterceptConstructor(reg, name, logger)
		},
		Target: func() (unlock.EventTarget, error) {
			return audio.NewDocument(logger)
		},
		MenuTrack: func() (menu.Track, error) {
			return audio.FindElementTrack(cfg.Menu.Element, cfg.Menu.Source, logger)
		},
		ExportReady: func(name string, ready func()) (func(), error) {
			return audio.ExportFunc(name, ready, logger)
		},
	}
	return host, game.Options{
		Width:  cfg.Host.Width,
		Height: cfg.Host.Height,
		Logger: logger,
		OpenAudio: func() error {
			_, err := audio.Open(b.Registry, cfg.Host.SampleRate)
			return err
		},
	}
}
