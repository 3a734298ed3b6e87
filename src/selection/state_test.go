package selection

import (
	"errors"
	"testing"
)

// drag presses at (x0,y0), moves to (x1,y1) and releases.
func drag(s *State, x0, y0, x1, y1 float64) {
	s.UpdateCursor(x0, y0)
	s.HandlePrimaryButton(true)
	s.UpdateCursor(x1, y1)
	s.HandlePrimaryButton(false)
}

func newSized(w, h uint32) *State {
	s := New()
	s.SetWindowSize(w, h)
	return s
}

func TestIdleOnlyPressStartsDrawing(t *testing.T) {
	s := newSized(200, 200)

	s.HandlePrimaryButton(false)
	if _, ok := s.Phase().(Idle); !ok {
		t.Fatalf("release in Idle moved to %s", s.Phase())
	}
	s.HandleButton(ButtonSecondary, true)
	if _, ok := s.Phase().(Idle); !ok {
		t.Fatalf("secondary press in Idle moved to %s", s.Phase())
	}
	s.UpdateCursor(10, 10)
	if _, ok := s.SelectionBounds(); ok {
		t.Fatal("cursor move in Idle created a selection")
	}

	s.HandlePrimaryButton(true)
	if _, ok := s.Phase().(Drawing); !ok {
		t.Fatalf("press in Idle gave %s, want Drawing", s.Phase())
	}
	b, ok := s.SelectionBounds()
	if !ok || b != (Bounds{X: 10, Y: 10}) {
		t.Fatalf("bounds after press = %+v, %v", b, ok)
	}
}

func TestZeroValueStateIsIdle(t *testing.T) {
	var s State
	if got := s.Phase().String(); got != "Idle" {
		t.Fatalf("zero value phase = %s", got)
	}
	s.HandlePrimaryButton(true)
	if _, ok := s.Phase().(Drawing); !ok {
		t.Fatalf("zero value press gave %s", s.Phase())
	}
}

func TestReleaseBelowMinimumResets(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
	}{
		{"both small", 10, 10, 20, 20},
		{"narrow", 0, 0, 24, 100},
		{"short", 0, 0, 100, 24},
		{"click", 50, 50, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSized(500, 500)
			drag(s, tt.x0, tt.y0, tt.x1, tt.y1)
			if _, ok := s.Phase().(Idle); !ok {
				t.Fatalf("phase = %s, want Idle", s.Phase())
			}
			if _, ok := s.SelectionBounds(); ok {
				t.Fatal("selection survived an undersized release")
			}
		})
	}
}

func TestReleaseAtThresholdConfirms(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           Bounds
	}{
		{"typical drag", 0, 0, 100, 50, Bounds{0, 0, 100, 50}},
		{"exact minimum", 10, 10, 35, 35, Bounds{10, 10, 25, 25}},
		{"dragged up-left", 100, 100, 40, 60, Bounds{40, 60, 60, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSized(500, 500)
			drag(s, tt.x0, tt.y0, tt.x1, tt.y1)
			if _, ok := s.Phase().(Confirmed); !ok {
				t.Fatalf("phase = %s, want Confirmed", s.Phase())
			}
			b, ok := s.SelectionBounds()
			if !ok || b != tt.want {
				t.Fatalf("bounds = %+v, want %+v", b, tt.want)
			}
		})
	}
}

func TestDrawingIsOnlyClampedAtZero(t *testing.T) {
	s := newSized(100, 100)
	s.UpdateCursor(50, 50)
	s.HandlePrimaryButton(true)
	s.UpdateCursor(400, -30)

	b, _ := s.SelectionBounds()
	if b != (Bounds{X: 50, Y: 0, W: 350, H: 50}) {
		t.Fatalf("bounds = %+v", b)
	}
	if c := s.Cursor(); c.Y != 0 {
		t.Fatalf("cursor y = %v, want 0", c.Y)
	}
}

func TestMoveKeepsSizeAndClamps(t *testing.T) {
	s := newSized(200, 200)
	drag(s, 100, 100, 150, 150)

	s.UpdateCursor(120, 110)
	s.HandlePrimaryButton(true)
	m, ok := s.Phase().(Moving)
	if !ok {
		t.Fatalf("press inside gave %s, want Moving", s.Phase())
	}
	if m.Offset != (Point{X: 20, Y: 10}) {
		t.Fatalf("offset = %+v", m.Offset)
	}

	s.UpdateCursor(-500, -500)
	b, _ := s.SelectionBounds()
	if b != (Bounds{X: 0, Y: 0, W: 50, H: 50}) {
		t.Fatalf("top-left clamp: bounds = %+v", b)
	}

	s.UpdateCursor(1000, 1000)
	b, _ = s.SelectionBounds()
	if b != (Bounds{X: 150, Y: 150, W: 50, H: 50}) {
		t.Fatalf("bottom-right clamp: bounds = %+v", b)
	}

	s.UpdateCursor(77.7, 93.3)
	b, _ = s.SelectionBounds()
	if b.W != 50 || b.H != 50 {
		t.Fatalf("move changed size: %+v", b)
	}

	s.HandlePrimaryButton(false)
	if _, ok := s.Phase().(Confirmed); !ok {
		t.Fatalf("release while moving gave %s", s.Phase())
	}
}

func TestConfirmedPressOutsideIsNoop(t *testing.T) {
	s := newSized(200, 200)
	drag(s, 100, 100, 150, 150)

	s.UpdateCursor(10, 10)
	s.HandlePrimaryButton(true)
	if _, ok := s.Phase().(Confirmed); !ok {
		t.Fatalf("press outside gave %s", s.Phase())
	}
	b, _ := s.SelectionBounds()
	if b != (Bounds{X: 100, Y: 100, W: 50, H: 50}) {
		t.Fatalf("bounds changed: %+v", b)
	}
}

func TestHitTestInclusive(t *testing.T) {
	s := newSized(200, 200)
	if s.HitTest(0, 0) {
		t.Fatal("hit without a selection")
	}
	drag(s, 10, 20, 60, 80)

	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{60, 80, true},
		{10, 80, true},
		{35, 50, true},
		{9, 50, false},
		{61, 50, false},
		{35, 19, false},
		{35, 81, false},
	}
	for _, tt := range tests {
		if got := s.HitTest(tt.x, tt.y); got != tt.want {
			t.Errorf("HitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestResetKeepsCursorAndWindow(t *testing.T) {
	s := newSized(300, 200)
	drag(s, 0, 0, 100, 100)
	s.Reset()

	if _, ok := s.Phase().(Idle); !ok {
		t.Fatalf("phase = %s", s.Phase())
	}
	if c := s.Cursor(); c != (Point{X: 100, Y: 100}) {
		t.Fatalf("cursor = %+v", c)
	}
	if w, h := s.WindowSize(); w != 300 || h != 200 {
		t.Fatalf("window = %dx%d", w, h)
	}
}

func TestCaptureAndDebounce(t *testing.T) {
	s := newSized(300, 300)
	if _, err := s.Capture(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Capture in Idle err = %v", err)
	}
	if s.BeginCapture() {
		t.Fatal("BeginCapture succeeded without a confirmed selection")
	}

	drag(s, 10, 10, 110, 60)
	want, _ := s.SelectionBounds()

	if !s.BeginCapture() {
		t.Fatal("BeginCapture failed on a confirmed selection")
	}
	if _, ok := s.Phase().(Capturing); !ok {
		t.Fatalf("phase = %s, want Capturing", s.Phase())
	}
	if s.BeginCapture() {
		t.Fatal("second BeginCapture passed the debounce")
	}

	got, err := s.Capture()
	if err != nil || got != want {
		t.Fatalf("Capture = %+v, %v; want %+v", got, err, want)
	}

	// Input during Capturing is ignored.
	s.HandlePrimaryButton(true)
	if _, ok := s.Phase().(Capturing); !ok {
		t.Fatalf("press during capture gave %s", s.Phase())
	}

	s.EndCapture()
	if _, ok := s.Phase().(Idle); !ok || s.CaptureDebounce() {
		t.Fatalf("after EndCapture phase=%s debounce=%v", s.Phase(), s.CaptureDebounce())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := newSized(300, 300)
	drag(s, 0, 0, 100, 100)
	snap := s.Snapshot()
	s.Reset()

	if _, ok := snap.SelectionBounds(); !ok {
		t.Fatal("snapshot lost its selection after Reset on the source state")
	}
	if _, ok := snap.Phase().(Confirmed); !ok {
		t.Fatalf("snapshot phase = %s", snap.Phase())
	}
}
