package input

import (
	"log"
	"strings"

	"screen-region/src/selection"
)

// Commands is the overlay command surface the router drives.
// *overlay.Controller implements it.
type Commands interface {
	Cursor(x, y float64)
	Button(b selection.Button, pressed bool)
	SetWindowSize(w, h uint32)
	KeyEnter() bool
	KeyEscape()
}

// Event is a host input event. The concrete types are PointerMoved,
// PointerButton, KeyPressed and Resized.
type Event interface {
	event()
}

// PointerMoved carries a position in physical pixels.
type PointerMoved struct{ X, Y float64 }

// PointerButton carries a button transition. Every button is forwarded;
// selection.State decides which ones drive the selection.
type PointerButton struct {
	Button  selection.Button
	Pressed bool
}

// KeyPressed carries the host's key name, e.g. "Escape" or "Return".
type KeyPressed struct{ Key string }

// Resized carries the new overlay size in physical pixels.
type Resized struct{ Width, Height uint32 }

func (PointerMoved) event()  {}
func (PointerButton) event() {}
func (KeyPressed) event()    {}
func (Resized) event()       {}

// Key is a normalised key.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
	KeyEnter
)

// NormalizeKey maps host key names onto the keys the overlay reacts to.
func NormalizeKey(name string) Key {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "escape", "esc":
		return KeyEscape
	case "return", "enter", "kp_enter":
		return KeyEnter
	default:
		return KeyOther
	}
}

// Router maps host events onto overlay commands. The commands themselves
// request the redraw that follows each mutation.
type Router struct {
	cmds Commands
}

func NewRouter(cmds Commands) *Router {
	return &Router{cmds: cmds}
}

// Dispatch applies one event. It reports whether the event was handled.
func (r *Router) Dispatch(ev Event) bool {
	switch e := ev.(type) {
	case PointerMoved:
		r.cmds.Cursor(e.X, e.Y)
	case PointerButton:
		r.cmds.Button(e.Button, e.Pressed)
	case Resized:
		r.cmds.SetWindowSize(e.Width, e.Height)
	case KeyPressed:
		switch NormalizeKey(e.Key) {
		case KeyEscape:
			r.cmds.KeyEscape()
		case KeyEnter:
			if !r.cmds.KeyEnter() {
				log.Printf("Input: enter ignored, no confirmed selection")
			}
		default:
			return false
		}
	default:
		return false
	}
	return true
}
