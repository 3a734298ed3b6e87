package render

import (
	"fmt"
	"log"

	"screen-region/src/selection"
)

// Colors are ARGB.
const (
	DimColor         uint32 = 0x80000000
	TransparentColor uint32 = 0x00000000
	DrawingColor     uint32 = 0xFFFFFFFF
	AccentColor      uint32 = 0xFFFFFF00
	AntColor         uint32 = 0xFF000000
)

const (
	dashPeriod  = 8
	dashOn      = 4
	borderWidth = 2
)

// Presenter puts a finished frame on screen.
type Presenter interface {
	Present(s *Surface) error
}

// Renderer paints a selection state into its surface once per frame. It is
// owned by a single goroutine.
type Renderer struct {
	surface   Surface
	frame     uint32
	presenter Presenter
}

// New returns a renderer that hands frames to p. A nil presenter only paints.
func New(p Presenter) *Renderer {
	return &Renderer{presenter: p}
}

// Frame returns the frame counter of the last drawn frame.
func (r *Renderer) Frame() uint32 { return r.frame }

// SetFrame sets the counter; the next Draw paints frame n+1.
func (r *Renderer) SetFrame(n uint32) { r.frame = n }

// Surface exposes the backing buffer.
func (r *Renderer) Surface() *Surface { return &r.surface }

// Draw paints one frame for st and presents it.
func (r *Renderer) Draw(st selection.State) error {
	r.frame++

	w, h := st.WindowSize()
	if r.surface.resize(int(max(w, 1)), int(max(h, 1))) {
		log.Printf("Overlay: surface resized to %dx%d", r.surface.Width, r.surface.Height)
	}

	r.paint(st)

	if r.presenter == nil {
		return nil
	}
	if err := r.presenter.Present(&r.surface); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

func (r *Renderer) paint(st selection.State) {
	s := &r.surface
	phase := st.Phase()

	if _, ok := phase.(selection.Capturing); ok {
		s.fill(TransparentColor)
		return
	}

	s.fill(DimColor)

	b, ok := st.SelectionBounds()
	if !ok {
		return
	}
	x, y, w, h := clampToSurface(b, s.Width, s.Height)

	switch phase.(type) {
	case selection.Idle:
	case selection.Drawing:
		s.fillRect(x, y, w, h, TransparentColor)
		s.drawBorder(x, y, w, h, DrawingColor)
	case selection.Confirmed, selection.Moving:
		s.fillRect(x, y, w, h, TransparentColor)
		s.drawBoldBorder(x, y, w, h, AccentColor)
		s.drawMarchingAnts(x, y, w, h, r.frame, AntColor)
	}
}

// clampToSurface keeps the rectangle's far edges one pixel inside the
// surface.
func clampToSurface(b selection.Bounds, width, height int) (x, y, w, h int) {
	x, y, w, h = max(b.X, 0), max(b.Y, 0), max(b.W, 0), max(b.H, 0)
	if x >= width {
		x = width - 1
	}
	if y >= height {
		y = height - 1
	}
	if x+w >= width {
		w = width - 1 - x
	}
	if y+h >= height {
		h = height - 1 - y
	}
	return x, y, w, h
}
