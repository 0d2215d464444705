package main

import (
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/unmute/internal/boot"
	"github.com/ingyamilmolinar/unmute/internal/game"
	game_log "github.com/ingyamilmolinar/unmute/internal/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := game_log.New(os.Stdout, game_log.LevelFromString(cfg.Log.Level))

	b := boot.New(cfg, logger)
	host, opts := newHost(cfg, b, logger)

	err = boot.Run(b, host, func() error {
		g := game.New(opts)
		g.Loader().OnReady(b.Ready)

		// Window settings only matter on desktop; in the browser ebiten
		// creates a canvas in the page.
		ebiten.SetWindowSize(cfg.Host.Width, cfg.Host.Height)
		ebiten.SetWindowTitle(cfg.Host.Title)
		return ebiten.RunGame(g)
	})
	if err != nil {
		log.Fatalf("unmute: %v", err)
	}
}
