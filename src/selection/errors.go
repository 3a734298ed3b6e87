package selection

import "errors"

var (
	// ErrNoSelection is returned when a capture is requested without valid bounds.
	ErrNoSelection = errors.New("no selection")
	// ErrCaptureFailed wraps failures reported by the screenshot backend.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrInvalidGeometry marks empty or negative bounds.
	ErrInvalidGeometry = errors.New("invalid selection geometry")
)
