package selection

import (
	"fmt"
	"math"
)

// MinBoxSize is the smallest width and height a drawn rectangle may have
// to be confirmed.
const MinBoxSize = 25

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// State is the selection state machine for one overlay session. It performs
// no I/O and is not safe for concurrent use; callers serialize access.
type State struct {
	start  Point
	end    Point
	active bool // start and end are set

	phase  Phase
	cursor Point

	width  uint32
	height uint32

	captureDebounce bool
}

// New returns an idle state sized to a 1x1 window.
func New() *State {
	return &State{phase: Idle{}, width: 1, height: 1}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	if s.phase == nil {
		return Idle{}
	}
	return s.phase
}

// Cursor returns the last clamped cursor position.
func (s *State) Cursor() Point { return s.cursor }

// WindowSize returns the window size in physical pixels.
func (s *State) WindowSize() (uint32, uint32) { return s.width, s.height }

// SetWindowSize records the overlay size used to clamp moves.
func (s *State) SetWindowSize(width, height uint32) {
	s.width = width
	s.height = height
}

// CaptureDebounce reports whether a capture cycle is in flight.
func (s *State) CaptureDebounce() bool { return s.captureDebounce }

// UpdateCursor stores the cursor, clamped to non-negative coordinates, and
// applies it to the rectangle being drawn or moved.
func (s *State) UpdateCursor(x, y float64) {
	s.cursor = clampPoint(x, y)

	switch p := s.Phase().(type) {
	case Drawing:
		s.end = s.cursor
	case Moving:
		b, ok := s.SelectionBounds()
		if !ok {
			return
		}
		w, h := float64(b.W), float64(b.H)
		// Whole pixels keep the width and height exact across moves.
		nx := clampAxis(math.Floor(s.cursor.X-p.Offset.X), w, float64(s.width))
		ny := clampAxis(math.Floor(s.cursor.Y-p.Offset.Y), h, float64(s.height))
		s.start = Point{X: nx, Y: ny}
		s.end = Point{X: nx + w, Y: ny + h}
	}
}

// HandleButton applies a button transition. Only the primary button drives
// the state machine.
func (s *State) HandleButton(button Button, pressed bool) {
	if button != ButtonPrimary {
		return
	}
	s.HandlePrimaryButton(pressed)
}

// HandlePrimaryButton applies a primary button press or release.
func (s *State) HandlePrimaryButton(pressed bool) {
	switch s.Phase().(type) {
	case Idle:
		if pressed {
			s.start = s.cursor
			s.end = s.cursor
			s.active = true
			s.phase = Drawing{}
		}
	case Drawing:
		if pressed {
			return
		}
		b, ok := s.SelectionBounds()
		if !ok || b.W < MinBoxSize || b.H < MinBoxSize {
			s.Reset()
			return
		}
		s.phase = Confirmed{}
	case Confirmed:
		if !pressed || !s.HitTest(s.cursor.X, s.cursor.Y) {
			return
		}
		b, _ := s.SelectionBounds()
		s.phase = Moving{Offset: Point{
			X: s.cursor.X - float64(b.X),
			Y: s.cursor.Y - float64(b.Y),
		}}
	case Moving:
		if !pressed {
			s.phase = Confirmed{}
		}
	case Capturing:
	}
}

// HitTest reports whether (x, y) falls inside the current rectangle,
// edges included.
func (s *State) HitTest(x, y float64) bool {
	b, ok := s.SelectionBounds()
	if !ok {
		return false
	}
	return b.Contains(x, y)
}

// SelectionBounds returns the rectangle derived from the two corners.
func (s *State) SelectionBounds() (Bounds, bool) {
	if !s.active {
		return Bounds{}, false
	}
	return boundsFrom(s.start, s.end), true
}

// Reset drops the selection and returns to Idle. The cursor and window
// size are kept.
func (s *State) Reset() {
	s.start = Point{}
	s.end = Point{}
	s.active = false
	s.phase = Idle{}
}

// Capture returns the bounds to hand to the screenshot backend.
func (s *State) Capture() (Bounds, error) {
	b, ok := s.SelectionBounds()
	if !ok {
		return Bounds{}, ErrNoSelection
	}
	if b.Empty() {
		return Bounds{}, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, b.W, b.H)
	}
	return b, nil
}

// BeginCapture moves a confirmed selection into Capturing. It returns false
// when the selection is not confirmed or a capture cycle is already running.
func (s *State) BeginCapture() bool {
	if s.captureDebounce {
		return false
	}
	if _, ok := s.Phase().(Confirmed); !ok {
		return false
	}
	s.captureDebounce = true
	s.phase = Capturing{}
	return true
}

// EndCapture finishes a capture cycle: the selection resets and the
// debounce guard is released.
func (s *State) EndCapture() {
	s.Reset()
	s.captureDebounce = false
}

// Snapshot returns a copy safe to read without the owner's lock.
func (s *State) Snapshot() State {
	c := *s
	if c.phase == nil {
		c.phase = Idle{}
	}
	return c
}
