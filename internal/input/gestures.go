package input

// Frame is what the host saw change during one update.
type Frame struct {
	LeftPressed   bool
	LeftReleased  bool
	RightReleased bool
	KeysPressed   int
	KeysReleased  int
	TouchesEnded  int
}

// Events maps a frame to the DOM event types a browser would have fired,
// in the order it would have fired them.
func (f Frame) Events() []string {
	var evs []string
	if f.LeftPressed {
		evs = append(evs, "pointerdown", "mousedown")
	}
	if f.LeftReleased {
		evs = append(evs, "pointerup", "mouseup", "click")
	}
	if f.RightReleased {
		evs = append(evs, "pointerup", "mouseup", "contextmenu")
	}
	if f.TouchesEnded > 0 {
		evs = append(evs, "touchend")
	}
	if f.KeysPressed > 0 {
		evs = append(evs, "keydown")
	}
	if f.KeysReleased > 0 {
		evs = append(evs, "keyup")
	}
	return evs
}

// Feed dispatches every event of f and returns how many listener calls
// were made.
func (d *Dispatcher) Feed(f Frame) int {
	n := 0
	for _, ev := range f.Events() {
		n += d.Dispatch(ev)
	}
	return n
}
