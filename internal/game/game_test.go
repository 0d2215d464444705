package game

import (
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	game_log "github.com/ingyamilmolinar/unmute/internal/log"
)

var testLogger = game_log.New(io.Discard, game_log.LevelError)

type drawnRect struct {
	r      image.Rectangle
	c      color.Color
	filled bool
}

// recordRects swaps drawRect for the duration of the test.
func recordRects(t *testing.T) *[]drawnRect {
	t.Helper()
	var got []drawnRect
	orig := drawRect
	drawRect = func(_ *ebiten.Image, r image.Rectangle, c color.Color, filled bool) {
		got = append(got, drawnRect{r, c, filled})
	}
	t.Cleanup(func() { drawRect = orig })
	return &got
}

func TestReadyFiresOnceAfterAudioAndFirstFrame(t *testing.T) {
	recordRects(t)
	opened := 0
	g := New(Options{
		Width:     64,
		Height:    48,
		OpenAudio: func() error { opened++; return nil },
		Logger:    testLogger,
	})
	fired := 0
	g.Loader().OnReady(func() { fired++ })

	if err := g.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	if opened != 1 {
		t.Fatalf("OpenAudio called %d times, want 1", opened)
	}
	if loaded, total := g.Loader().Progress(); loaded != 1 || total != 2 {
		t.Fatalf("progress %d/%d after first update, want 1/2", loaded, total)
	}
	if fired != 0 {
		t.Fatalf("ready fired before the first frame was drawn")
	}

	screen := ebiten.NewImage(64, 48)
	g.Draw(screen)
	if fired != 0 {
		t.Fatalf("ready fired before the frame step was marked")
	}

	for i := 0; i < 3; i++ {
		if err := g.Update(); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		g.Draw(screen)
	}
	if fired != 1 {
		t.Fatalf("ready fired %d times, want 1", fired)
	}
	if opened != 1 {
		t.Fatalf("OpenAudio called %d times, want 1", opened)
	}
}

func TestAudioFailureStillReachesReady(t *testing.T) {
	rects := recordRects(t)
	g := New(Options{
		Width:     640,
		Height:    480,
		OpenAudio: func() error { return errors.New("no device") },
		Logger:    testLogger,
	})
	fired := 0
	g.Loader().OnReady(func() { fired++ })

	screen := ebiten.NewImage(640, 480)
	_ = g.Update()
	g.Draw(screen)
	_ = g.Update()
	if fired != 1 {
		t.Fatalf("ready fired %d times, want 1", fired)
	}

	*rects = nil
	g.Draw(screen)
	if len(*rects) != 3 {
		t.Fatalf("drew %d rects, want outline, fill and border", len(*rects))
	}
	fill := (*rects)[1]
	if !fill.filled || fill.c != colAudioError {
		t.Fatalf("fill = %+v, want filled with the audio error color", fill)
	}
	if fill.r.Dx() != (*rects)[0].r.Dx() {
		t.Fatalf("fill width %d, want full bar %d", fill.r.Dx(), (*rects)[0].r.Dx())
	}
}

func TestProgressRect(t *testing.T) {
	outline, fill := progressRect(640, 480, 0, 0)
	if want := image.Rect(160, 234, 480, 246); outline != want {
		t.Fatalf("outline = %v, want %v", outline, want)
	}
	if !fill.Empty() {
		t.Fatalf("fill = %v with no steps, want empty", fill)
	}

	_, fill = progressRect(640, 480, 1, 2)
	if fill.Dx() != 160 {
		t.Fatalf("half-loaded fill width = %d, want 160", fill.Dx())
	}
	_, fill = progressRect(640, 480, 2, 2)
	if fill != outline {
		t.Fatalf("full fill = %v, want %v", fill, outline)
	}
}

func TestLayoutUsesConfiguredSize(t *testing.T) {
	g := New(Options{Width: 320, Height: 200, Logger: testLogger})
	if w, h := g.Layout(1000, 1000); w != 320 || h != 200 {
		t.Fatalf("layout = %dx%d, want 320x200", w, h)
	}
}
