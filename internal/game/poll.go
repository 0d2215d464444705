package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ingyamilmolinar/unmute/internal/input"
)

var (
	keyBuf   []ebiten.Key
	touchBuf []ebiten.TouchID
)

// pollFrame collects this tick's button, key and touch transitions.
func pollFrame() input.Frame {
	f := input.Frame{
		LeftPressed:   inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		LeftReleased:  inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		RightReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight),
	}
	keyBuf = inpututil.AppendJustPressedKeys(keyBuf[:0])
	f.KeysPressed = len(keyBuf)
	keyBuf = inpututil.AppendJustReleasedKeys(keyBuf[:0])
	f.KeysReleased = len(keyBuf)
	touchBuf = inpututil.AppendJustReleasedTouchIDs(touchBuf[:0])
	f.TouchesEnded = len(touchBuf)
	return f
}
