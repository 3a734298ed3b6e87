package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"screen-region/src/capture"
)

var errNoDisplay = errors.New("no active displays found")

// Service captures regions of a single display. Region coordinates are
// relative to that display's top-left corner, matching overlay coordinates.
type Service struct {
	Display int
}

func New(display int) *Service {
	return &Service{Display: display}
}

// DisplayBounds returns the bounds of the configured display in virtual
// screen coordinates.
func (s *Service) DisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, errNoDisplay
	}
	if s.Display < 0 || s.Display >= n {
		return image.Rectangle{}, fmt.Errorf("display %d not active (%d displays)", s.Display, n)
	}
	return screenshot.GetDisplayBounds(s.Display), nil
}

// CaptureDisplay grabs the whole display. The overlay uses it as a frozen
// backdrop.
func (s *Service) CaptureDisplay() (*image.RGBA, error) {
	db, err := s.DisplayBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(db)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", s.Display, err)
	}
	return img, nil
}

// CaptureRegion implements capture.Shooter.
func (s *Service) CaptureRegion(ctx context.Context, x, y int32, w, h uint32) (capture.Handle, error) {
	if err := ctx.Err(); err != nil {
		return capture.Handle{}, err
	}
	db, err := s.DisplayBounds()
	if err != nil {
		return capture.Handle{}, err
	}
	rect, err := regionRect(db, x, y, w, h)
	if err != nil {
		return capture.Handle{}, err
	}
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return capture.Handle{}, fmt.Errorf("failed to capture region: %w", err)
	}
	return capture.Handle{Image: img}, nil
}

// regionRect translates a display-relative region into virtual screen
// coordinates and clips it to the display.
func regionRect(display image.Rectangle, x, y int32, w, h uint32) (image.Rectangle, error) {
	if w == 0 || h == 0 {
		return image.Rectangle{}, fmt.Errorf("invalid region dimensions: width=%d, height=%d", w, h)
	}
	r := image.Rect(int(x), int(y), int(x)+int(w), int(y)+int(h)).Add(display.Min)
	clipped := r.Intersect(display)
	if clipped.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %v lies outside display %v", r, display)
	}
	return clipped, nil
}
