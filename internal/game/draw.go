package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colBackground = color.RGBA{20, 20, 30, 255}
	colBarTrack   = color.RGBA{40, 40, 40, 255}
	colBarFill    = color.RGBA{40, 200, 40, 255}
	colBarBorder  = color.RGBA{240, 240, 240, 255}
	colAudioError = color.RGBA{200, 40, 40, 255}
)

// drawRect paints r filled or outlined. Tests replace it to record the bar
// geometry.
var drawRect = func(dst *ebiten.Image, r image.Rectangle, c color.Color, filled bool) {
	x, y := float32(r.Min.X), float32(r.Min.Y)
	w, h := float32(r.Dx()), float32(r.Dy())
	if !filled {
		vector.StrokeRect(dst, x, y, w, h, 1, c, false)
		return
	}
	vector.DrawFilledRect(dst, x, y, w, h, c, false)
}

// progressRect returns the bar outline centred in a w×h screen and the
// filled part for loaded out of total steps.
func progressRect(w, h, loaded, total int) (outline, fill image.Rectangle) {
	bw, bh := w/2, 12
	x, y := (w-bw)/2, h/2-bh/2
	outline = image.Rect(x, y, x+bw, y+bh)
	if total <= 0 {
		return outline, image.Rectangle{}
	}
	fw := bw * loaded / total
	return outline, image.Rect(x, y, x+fw, y+bh)
}

func (g *Game) drawProgress(screen *ebiten.Image, loaded, total int) {
	screen.Fill(colBackground)
	outline, fill := progressRect(g.opts.Width, g.opts.Height, loaded, total)
	drawRect(screen, outline, colBarTrack, true)
	if !fill.Empty() {
		c := color.Color(colBarFill)
		if g.audioErr != nil {
			c = colAudioError
		}
		drawRect(screen, fill, c, true)
	}
	drawRect(screen, outline, colBarBorder, false)
}
