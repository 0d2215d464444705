//go:build js && wasm

package audio

import (
	"fmt"
	"syscall/js"

	game_log "github.com/ingyamilmolinar/unmute/internal/log"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

// InterceptConstructor replaces window[name] with a Proxy whose construct
// trap builds the real object with the caller's arguments, records it in
// reg and hands back the very same object. The returned restore func puts
// the original constructor back.
func InterceptConstructor(reg *unlock.Registry, name string, logger *game_log.Logger) (restore func(), err error) {
	defer recoverJS(&err)
	global := js.Global()
	orig := global.Get(name)
	if orig.IsUndefined() || orig.IsNull() {
		return nil, fmt.Errorf("%w: %s", ErrNoConstructor, name)
	}
	track := js.FuncOf(func(_ js.Value, args []js.Value) any {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("track %s: %v", name, r)
			}
		}()
		reg.Track(&jsContext{v: args[0], logger: logger})
		logger.Debugf("tracked %s #%d", name, reg.Len()-1)
		return nil
	})
	// The trap lives in JS so a throwing constructor reaches its caller
	// untouched.
	handler := global.Get("Function").New("track", proxyHandlerSrc).Invoke(track)
	global.Set(name, global.Get("Proxy").New(orig, handler))
	return func() {
		global.Set(name, orig)
		track.Release()
	}, nil
}

const proxyHandlerSrc = `return {
	construct(target, args, newTarget) {
		const ctx = Reflect.construct(target, args, newTarget);
		track(ctx);
		return ctx;
	}
};`

// jsContext adapts a Web Audio BaseAudioContext.
type jsContext struct {
	v      js.Value
	logger *game_log.Logger
}

func (c *jsContext) State() unlock.State {
	return unlock.State(c.v.Get("state").String())
}

// Resume issues resume() and leaves the promise to settle on its own; a
// rejection is logged and the next gesture tries again.
func (c *jsContext) Resume() (err error) {
	defer recoverJS(&err)
	settle(c.v.Call("resume"), func(reason js.Value) {
		c.logger.Warnf("AudioContext.resume rejected: %s", describe(reason))
	})
	return nil
}

// Document is the page's document as an unlock.EventTarget.
type Document struct {
	v      js.Value
	logger *game_log.Logger
}

func NewDocument(logger *game_log.Logger) (*Document, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() || doc.IsNull() {
		return nil, ErrNoDocument
	}
	return &Document{v: doc, logger: logger}, nil
}

func (d *Document) Listen(eventType string, fn func(string)) (remove func(), err error) {
	defer recoverJS(&err)
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		defer d.logPanic("%s listener", eventType)
		fn(eventType)
		return nil
	})
	d.v.Call("addEventListener", eventType, cb)
	return func() {
		defer d.logPanic("remove %s listener", eventType)
		d.v.Call("removeEventListener", eventType, cb)
		cb.Release()
	}, nil
}

// logPanic must be deferred directly.
func (d *Document) logPanic(format string, args ...any) {
	if r := recover(); r != nil {
		d.logger.Errorf(format+": %v", append(args, r)...)
	}
}

// ExportFunc publishes window[name]() calling fn. The returned release
// removes the global and frees the callback.
func ExportFunc(name string, fn func(), logger *game_log.Logger) (release func(), err error) {
	defer recoverJS(&err)
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("%s: %v", name, r)
			}
		}()
		fn()
		return nil
	})
	js.Global().Set(name, cb)
	return func() {
		js.Global().Delete(name)
		cb.Release()
	}, nil
}

// ElementTrack drives an HTMLAudioElement.
type ElementTrack struct {
	el     js.Value
	logger *game_log.Logger
}

// FindElementTrack looks up the audio element by id. When src is set and
// the element has no source yet, src is assigned.
func FindElementTrack(id, src string, logger *game_log.Logger) (t *ElementTrack, err error) {
	defer recoverJS(&err)
	doc := js.Global().Get("document")
	if doc.IsUndefined() || doc.IsNull() {
		return nil, ErrNoDocument
	}
	el := doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("%w: #%s", ErrNoElement, id)
	}
	if src != "" && el.Get("src").String() == "" {
		el.Set("src", src)
	}
	el.Set("autoplay", true)
	return &ElementTrack{el: el, logger: logger}, nil
}

func (t *ElementTrack) Volume() float64 { return t.el.Get("volume").Float() }

func (t *ElementTrack) SetVolume(v float64) {
	// The element throws IndexSizeError outside [0,1].
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	t.el.Set("volume", v)
}

func (t *ElementTrack) SetLoop(loop bool) { t.el.Set("loop", loop) }

// Play starts playback. Autoplay refusal arrives later as a promise
// rejection and is only logged.
func (t *ElementTrack) Play() (err error) {
	defer recoverJS(&err)
	settle(t.el.Call("play"), func(reason js.Value) {
		t.logger.Warnf("menu track play() rejected: %s", describe(reason))
	})
	return nil
}

func (t *ElementTrack) Pause() { t.el.Call("pause") }

// settle attaches handlers to p when it is a promise and frees them once
// it settles either way.
func settle(p js.Value, onReject func(reason js.Value)) {
	if p.Type() != js.TypeObject || p.Get("then").Type() != js.TypeFunction {
		return
	}
	var ok, fail js.Func
	release := func() {
		ok.Release()
		fail.Release()
	}
	ok = js.FuncOf(func(js.Value, []js.Value) any {
		release()
		return nil
	})
	fail = js.FuncOf(func(_ js.Value, args []js.Value) any {
		defer release()
		reason := js.Undefined()
		if len(args) > 0 {
			reason = args[0]
		}
		onReject(reason)
		return nil
	})
	p.Call("then", ok, fail)
}

func describe(v js.Value) string {
	if v.Type() == js.TypeObject {
		if msg := v.Get("message"); msg.Type() == js.TypeString {
			return v.Get("name").String() + ": " + msg.String()
		}
	}
	return v.String()
}

func recoverJS(err *error) {
	if r := recover(); r != nil {
		if jsErr, ok := r.(js.Error); ok {
			*err = fmt.Errorf("js: %w", jsErr)
			return
		}
		*err = fmt.Errorf("js: %v", r)
	}
}
