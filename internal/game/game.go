// Package game is the placeholder hosted application: it opens the audio
// output like a real game would, shows loading progress and reports
// readiness through its loader.
package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/ingyamilmolinar/unmute/internal/input"
	"github.com/ingyamilmolinar/unmute/internal/loader"
	game_log "github.com/ingyamilmolinar/unmute/internal/log"
)

const (
	StepAudio = "audio"
	StepFrame = "first-frame"
)

// Options wire the game to the bootstrap.
type Options struct {
	Width, Height int
	// OpenAudio opens the audio output. It runs on the first update.
	OpenAudio func() error
	// Input receives polled gestures. Nil when the page delivers them.
	Input  *input.Dispatcher
	Logger *game_log.Logger
}

type Game struct {
	opts   Options
	load   *loader.Loader
	logger *game_log.Logger

	frame    int64
	audioErr error
	drawn    bool
}

func New(opts Options) *Game {
	return &Game{
		opts:   opts,
		load:   loader.New(StepAudio, StepFrame),
		logger: opts.Logger.With("game"),
	}
}

// Loader exposes the readiness signal.
func (g *Game) Loader() *loader.Loader { return g.load }

func (g *Game) Update() error {
	g.frame++
	if g.opts.Input != nil {
		g.opts.Input.Feed(pollFrame())
	}
	if g.frame == 1 {
		if g.opts.OpenAudio != nil {
			if err := g.opts.OpenAudio(); err != nil {
				// Keep going silent rather than failing the page.
				g.audioErr = err
				g.logger.Errorf("open audio: %v", err)
			}
		}
		g.markDone(StepAudio)
	}
	if g.drawn {
		g.markDone(StepFrame)
	}
	return nil
}

func (g *Game) markDone(step string) {
	if err := g.load.Done(step); err != nil {
		g.logger.Errorf("mark %s loaded: %v", step, err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawn = true
	loaded, total := g.load.Progress()
	g.drawProgress(screen, loaded, total)
	msg := fmt.Sprintf("loading %d/%d", loaded, total)
	if g.load.Poll() {
		msg = "ready"
	}
	if g.audioErr != nil {
		msg += "\naudio unavailable"
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.opts.Width, g.opts.Height
}
