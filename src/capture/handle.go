package capture

import (
	"context"
	"image"

	"screen-region/src/selection"
)

// Handle is the result of a region capture.
type Handle struct {
	Bounds selection.Bounds
	Image  *image.RGBA
	// Path is set once the image has been written to disk.
	Path string
}

// Shooter captures a screen region. Coordinates are relative to the overlay's
// display.
type Shooter interface {
	CaptureRegion(ctx context.Context, x, y int32, w, h uint32) (Handle, error)
}

// Store persists a capture before Fire returns, typically filling h.Path.
type Store interface {
	Store(ctx context.Context, h *Handle) error
}

// Consumer receives finished captures off the UI goroutine.
type Consumer interface {
	Name() string
	Consume(ctx context.Context, h Handle) error
}
