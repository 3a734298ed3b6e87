package overlay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"screen-region/src/capture"
	"screen-region/src/selection"
)

// ErrCaptureBusy is returned by DoCapture while another capture is running.
var ErrCaptureBusy = errors.New("capture already in progress")

// ErrCaptureCancelled is returned to a DoCapture caller whose pending
// capture was dropped by Reset.
var ErrCaptureCancelled = errors.New("capture cancelled")

// Host is the windowing shell that displays the overlay.
type Host interface {
	RequestRedraw()
	Close()
	Show()
}

// Capturer turns bounds into a capture. *capture.Trigger implements it.
type Capturer interface {
	Fire(ctx context.Context, b selection.Bounds) (capture.Handle, error)
}

// StateResponse is the externally visible state.
type StateResponse struct {
	Phase  string            `json:"phase"`
	Bounds *selection.Bounds `json:"bounds"`
}

type captureResult struct {
	handle capture.Handle
	err    error
}

// Options configures a Controller. Only Capturer is required for captures to
// succeed; everything else may be nil.
type Options struct {
	Host     Host
	Capturer Capturer
	// OnChange runs after every mutation that changes what is displayed.
	OnChange func()
	// OnResult receives the outcome of every capture attempt.
	OnResult func(capture.Handle, error)
}

// Controller owns the selection state of the overlay and serialises every
// command against it. The lock is never held while calling the host or the
// capturer.
type Controller struct {
	mu             sync.Mutex
	state          *selection.State
	capturePending bool

	// waiter receives the result of the pending capture for DoCapture.
	waiter chan captureResult

	host     Host
	capturer Capturer
	onChange func()
	onResult func(capture.Handle, error)
}

func NewController(opts Options) *Controller {
	c := &Controller{
		state:    selection.New(),
		host:     opts.Host,
		capturer: opts.Capturer,
		onChange: opts.OnChange,
		onResult: opts.OnResult,
	}
	if c.host == nil {
		c.host = nopHost{}
	}
	return c
}

// SetHost replaces the host. The shell calls it once its window exists.
func (c *Controller) SetHost(h Host) {
	if h == nil {
		h = nopHost{}
	}
	c.mu.Lock()
	c.host = h
	c.mu.Unlock()
}

func (c *Controller) currentHost() Host {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

func (c *Controller) changed() {
	c.currentHost().RequestRedraw()
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) mutate(f func(s *selection.State)) {
	c.mu.Lock()
	f(c.state)
	c.mu.Unlock()
	c.changed()
}

// Cursor records a pointer position in physical pixels.
func (c *Controller) Cursor(x, y float64) {
	c.mutate(func(s *selection.State) { s.UpdateCursor(x, y) })
}

// MouseDown and MouseUp report primary button transitions.
func (c *Controller) MouseDown() {
	c.mutate(func(s *selection.State) { s.HandlePrimaryButton(true) })
}

func (c *Controller) MouseUp() {
	c.mutate(func(s *selection.State) { s.HandlePrimaryButton(false) })
}

// Button reports any pointer button. selection.State ignores all but the
// primary one.
func (c *Controller) Button(b selection.Button, pressed bool) {
	c.mutate(func(s *selection.State) { s.HandleButton(b, pressed) })
}

// SetWindowSize records the overlay size in physical pixels.
func (c *Controller) SetWindowSize(w, h uint32) {
	c.mutate(func(s *selection.State) { s.SetWindowSize(w, h) })
}

// KeyEnter moves a confirmed selection into Capturing. The capture itself
// runs after the host presents the next frame. It reports whether a capture
// was armed.
func (c *Controller) KeyEnter() bool {
	c.mu.Lock()
	ok := c.state.BeginCapture()
	if ok {
		c.capturePending = true
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	log.Printf("Overlay: capture armed")
	c.changed()
	return true
}

// KeyEscape closes the overlay when nothing is selected and otherwise drops
// the selection. It is ignored while a capture is in flight.
func (c *Controller) KeyEscape() {
	c.mu.Lock()
	var closeHost bool
	switch c.state.Phase().(type) {
	case selection.Idle:
		closeHost = true
	case selection.Capturing:
		c.mu.Unlock()
		return
	default:
		c.state.Reset()
	}
	c.mu.Unlock()

	if closeHost {
		log.Printf("Overlay: escape in Idle, closing")
		c.currentHost().Close()
		return
	}
	c.changed()
}

// Ready shows the overlay window once the host has sized it.
func (c *Controller) Ready() {
	c.currentHost().Show()
}

// Reset returns to Idle and cancels any pending capture. Called when a new
// overlay session opens.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state.EndCapture()
	c.capturePending = false
	waiter := c.waiter
	c.waiter = nil
	c.mu.Unlock()
	if waiter != nil {
		waiter <- captureResult{err: ErrCaptureCancelled}
	}
	c.changed()
}

// State returns the current phase and bounds.
func (c *Controller) State() StateResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp := StateResponse{Phase: c.state.Phase().String()}
	if b, ok := c.state.SelectionBounds(); ok {
		resp.Bounds = &b
	}
	return resp
}

// Snapshot returns a copy of the selection state for the renderer.
func (c *Controller) Snapshot() selection.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// FramePresented is called by the host after each presented frame with the
// phase that frame painted. Animated phases request the next frame. A
// pending capture runs only once a Capturing frame, which is fully
// transparent, is on screen.
func (c *Controller) FramePresented(ctx context.Context, painted selection.Phase) {
	c.mu.Lock()
	phase := c.state.Phase()
	if selection.Animated(phase) {
		c.mu.Unlock()
		c.currentHost().RequestRedraw()
		return
	}
	if _, ok := phase.(selection.Capturing); !ok || !c.capturePending {
		c.mu.Unlock()
		return
	}
	if _, ok := painted.(selection.Capturing); !ok {
		c.mu.Unlock()
		c.currentHost().RequestRedraw()
		return
	}
	c.capturePending = false
	b, err := c.state.Capture()
	c.mu.Unlock()

	_, _ = c.runCapture(ctx, b, err)
}

// DoCapture captures the current selection and waits for the result. From
// Confirmed it arms a capture like KeyEnter; in Capturing it joins a capture
// armed by KeyEnter. Either way the pixels are grabbed after the host
// presents the transparent frame. Without a host nothing is on screen and
// the capture runs immediately.
func (c *Controller) DoCapture(ctx context.Context) (capture.Handle, error) {
	c.mu.Lock()
	armed := false
	switch c.state.Phase().(type) {
	case selection.Confirmed:
		if !c.state.BeginCapture() {
			c.mu.Unlock()
			return capture.Handle{}, ErrCaptureBusy
		}
		armed = true
	case selection.Capturing:
		if !c.capturePending || c.waiter != nil {
			c.mu.Unlock()
			return capture.Handle{}, ErrCaptureBusy
		}
	default:
		c.mu.Unlock()
		return capture.Handle{}, selection.ErrNoSelection
	}

	if _, headless := c.host.(nopHost); headless {
		c.capturePending = false
		b, err := c.state.Capture()
		c.mu.Unlock()
		return c.runCapture(ctx, b, err)
	}

	c.capturePending = true
	done := make(chan captureResult, 1)
	c.waiter = done
	c.mu.Unlock()

	if armed {
		log.Printf("Overlay: capture armed by request")
		c.changed()
	}

	select {
	case r := <-done:
		return r.handle, r.err
	case <-ctx.Done():
		return capture.Handle{}, c.abandon(done, armed, ctx.Err())
	}
}

// abandon detaches a waiter whose context ended. A capture the waiter armed
// is cancelled if it has not started yet.
func (c *Controller) abandon(done chan captureResult, armed bool, err error) error {
	c.mu.Lock()
	if c.waiter == done {
		c.waiter = nil
	}
	cancelled := armed && c.capturePending
	if cancelled {
		c.capturePending = false
		c.state.EndCapture()
	}
	c.mu.Unlock()

	if cancelled {
		log.Printf("Overlay: capture request abandoned: %v", err)
		c.changed()
	}
	return err
}

func (c *Controller) runCapture(ctx context.Context, b selection.Bounds, err error) (capture.Handle, error) {
	var h capture.Handle
	if err == nil {
		if c.capturer == nil {
			err = fmt.Errorf("%w: no capture backend", selection.ErrCaptureFailed)
		} else {
			h, err = c.capturer.Fire(ctx, b)
		}
	}

	c.mu.Lock()
	c.state.EndCapture()
	waiter := c.waiter
	c.waiter = nil
	c.mu.Unlock()

	if err != nil {
		log.Printf("Overlay: capture failed: %v", err)
		c.changed()
	} else {
		log.Printf("Overlay: captured %dx%d at (%d,%d)", b.W, b.H, b.X, b.Y)
	}
	if waiter != nil {
		waiter <- captureResult{handle: h, err: err}
	}
	if c.onResult != nil {
		c.onResult(h, err)
	}
	if err == nil {
		c.currentHost().Close()
		if c.onChange != nil {
			c.onChange()
		}
	}
	return h, err
}

type nopHost struct{}

func (nopHost) RequestRedraw() {}
func (nopHost) Close()         {}
func (nopHost) Show()          {}
