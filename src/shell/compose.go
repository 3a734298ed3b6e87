package shell

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"screen-region/src/render"
)

// compositor presents renderer surfaces over a frozen screenshot of the
// display, standing in for a transparent window.
type compositor struct {
	backdrop image.Image
	scaled   image.Image
	overlay  *image.NRGBA
	frame    *image.RGBA
}

func (c *compositor) setBackdrop(img image.Image) {
	c.backdrop = img
	c.scaled = nil
}

// Present implements render.Presenter.
func (c *compositor) Present(s *render.Surface) error {
	c.overlay = s.NRGBA(c.overlay)
	r := c.overlay.Bounds()
	if c.frame == nil || c.frame.Bounds() != r {
		c.frame = image.NewRGBA(r)
	}

	if bg := c.background(r.Dx(), r.Dy()); bg != nil {
		draw.Draw(c.frame, r, bg, bg.Bounds().Min, draw.Src)
	} else {
		draw.Draw(c.frame, r, image.Black, image.Point{}, draw.Src)
	}
	draw.Draw(c.frame, r, c.overlay, image.Point{}, draw.Over)
	return nil
}

// background returns the backdrop sized to w x h, resampling once per size.
func (c *compositor) background(w, h int) image.Image {
	if c.backdrop == nil {
		return nil
	}
	if b := c.backdrop.Bounds(); b.Dx() == w && b.Dy() == h {
		return c.backdrop
	}
	if c.scaled != nil {
		if b := c.scaled.Bounds(); b.Dx() == w && b.Dy() == h {
			return c.scaled
		}
	}
	c.scaled = imaging.Resize(c.backdrop, w, h, imaging.Linear)
	return c.scaled
}

// output is the last composed frame, or a 1x1 placeholder.
func (c *compositor) output() image.Image {
	if c.frame == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return c.frame
}
