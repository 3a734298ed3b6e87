package render

import "image"

// Surface is a row-major ARGB pixel buffer.
type Surface struct {
	Width  int
	Height int
	Pix    []uint32
}

// resize reallocates the buffer when the size changes. Content is discarded.
func (s *Surface) resize(width, height int) bool {
	if s.Width == width && s.Height == height && len(s.Pix) == width*height {
		return false
	}
	s.Width = width
	s.Height = height
	s.Pix = make([]uint32, width*height)
	return true
}

func (s *Surface) fill(color uint32) {
	for i := range s.Pix {
		s.Pix[i] = color
	}
}

// set writes one pixel. Coordinates outside the surface and indices past the
// end of Pix are dropped, which covers a buffer that lags behind a resize.
func (s *Surface) set(x, y int, color uint32) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	i := y*s.Width + x
	if i >= len(s.Pix) {
		return
	}
	s.Pix[i] = color
}

// fillRect paints rows y..y+h and columns x..x+w-1. Rows that would run past
// the end of the buffer are skipped whole.
func (s *Surface) fillRect(x, y, w, h int, color uint32) {
	if w <= 0 || x < 0 || y < 0 || x+w > s.Width {
		return
	}
	for row := y; row <= y+h; row++ {
		lo := row*s.Width + x
		hi := lo + w
		if hi > len(s.Pix) {
			return
		}
		for i := lo; i < hi; i++ {
			s.Pix[i] = color
		}
	}
}

// drawBorder outlines the rectangle whose corners are (x,y) and (x+w,y+h).
func (s *Surface) drawBorder(x, y, w, h int, color uint32) {
	for dx := 0; dx <= w; dx++ {
		s.set(x+dx, y, color)
		s.set(x+dx, y+h, color)
	}
	for dy := 0; dy <= h; dy++ {
		s.set(x, y+dy, color)
		s.set(x+w, y+dy, color)
	}
}

// drawBoldBorder draws two concentric outlines growing outwards from the
// rectangle edge.
func (s *Surface) drawBoldBorder(x, y, w, h int, color uint32) {
	for off := 0; off < borderWidth; off++ {
		s.drawBorder(x-off, y-off, w+2*off, h+2*off, color)
	}
}

// drawMarchingAnts overlays the dashed border. The dash phase advances with
// frame so the ants travel counter-clockwise around the rectangle.
func (s *Surface) drawMarchingAnts(x, y, w, h int, frame uint32, color uint32) {
	phase := int(frame % dashPeriod)
	on := func(t int) bool { return (t+phase)%dashPeriod < dashOn }

	for dx := 0; dx <= w; dx++ {
		if on(dx) {
			s.set(x+dx, y, color)
		}
		if on(w - dx) {
			s.set(x+dx, y+h, color)
		}
	}
	for dy := 0; dy <= h; dy++ {
		if on(dy) {
			s.set(x+w, y+dy, color)
		}
		if on(h - dy) {
			s.set(x, y+dy, color)
		}
	}
}

// NRGBA converts the surface into dst, reallocating dst when its size does
// not match. The returned image has straight (non-premultiplied) alpha.
func (s *Surface) NRGBA(dst *image.NRGBA) *image.NRGBA {
	if dst == nil || dst.Rect.Dx() != s.Width || dst.Rect.Dy() != s.Height {
		dst = image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	}
	for i, c := range s.Pix {
		o := i * 4
		if o+3 >= len(dst.Pix) {
			break
		}
		dst.Pix[o] = uint8(c >> 16)
		dst.Pix[o+1] = uint8(c >> 8)
		dst.Pix[o+2] = uint8(c)
		dst.Pix[o+3] = uint8(c >> 24)
	}
	return dst
}

// At returns the pixel at (x, y), or 0 outside the surface.
func (s *Surface) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return 0
	}
	i := y*s.Width + x
	if i >= len(s.Pix) {
		return 0
	}
	return s.Pix[i]
}
