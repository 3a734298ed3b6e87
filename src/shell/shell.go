package shell

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"

	"screen-region/src/capture"
	"screen-region/src/eventloop"
	"screen-region/src/input"
	"screen-region/src/overlay"
	"screen-region/src/render"
	"screen-region/src/selection"
)

const frameInterval = 16 * time.Millisecond

// Backdropper grabs the display the overlay covers.
type Backdropper interface {
	CaptureDisplay() (*image.RGBA, error)
}

// Shell hosts the overlay in a fullscreen fyne window. It implements
// overlay.Host for the controller and eventloop.Opener for the loop.
type Shell struct {
	app      fyne.App
	backdrop Backdropper
	ctl      *overlay.Controller
	router   *input.Router

	// Owned by the fyne goroutine.
	win          fyne.Window
	raster       *canvas.Raster
	renderer     *render.Renderer
	comp         *compositor
	lastW, lastH int

	dirty   atomic.Bool
	visible atomic.Bool

	// painted is the phase of the last frame drawn and not yet reported,
	// or nil.
	frameMu sync.Mutex
	painted selection.Phase

	mu   sync.Mutex
	done func(eventloop.Outcome)
}

var (
	_ overlay.Host     = (*Shell)(nil)
	_ eventloop.Opener = (*Shell)(nil)
)

func New(app fyne.App, backdrop Backdropper) *Shell {
	s := &Shell{app: app, backdrop: backdrop, comp: &compositor{}}
	s.renderer = render.New(s.comp)
	return s
}

// Attach binds the controller and makes the shell its host.
func (s *Shell) Attach(ctl *overlay.Controller) {
	s.ctl = ctl
	s.router = input.NewRouter(ctl)
	ctl.SetHost(s)
}

// Run paces frames until ctx is cancelled. After each painted frame the
// controller decides whether another is needed or a capture is due.
func (s *Shell) Run(ctx context.Context) {
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// tick reports the last painted frame to the controller and schedules a
// refresh when one was requested.
func (s *Shell) tick(ctx context.Context) {
	if p := s.takePainted(); p != nil {
		s.ctl.FramePresented(ctx, p)
	}
	if s.dirty.Swap(false) {
		fyne.Do(s.refresh)
	}
}

func (s *Shell) takePainted() selection.Phase {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	p := s.painted
	s.painted = nil
	return p
}

// Open starts an overlay session.
func (s *Shell) Open(_ context.Context, done func(eventloop.Outcome)) error {
	if s.ctl == nil {
		return errors.New("shell has no controller")
	}
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return errors.New("overlay already open")
	}
	s.done = done
	s.mu.Unlock()

	s.ctl.Reset()
	s.ctl.Ready()
	return nil
}

// OnResult receives capture outcomes from the controller. A successful
// capture ends the session; a failure leaves the overlay up for another try
// unless it is already hidden.
func (s *Shell) OnResult(h capture.Handle, err error) {
	if err == nil {
		s.finish(eventloop.Outcome{Handle: h})
		return
	}
	if !s.visible.Load() {
		s.finish(eventloop.Outcome{Err: err})
	}
}

func (s *Shell) finish(o eventloop.Outcome) {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done != nil {
		done(o)
	}
}

// RequestRedraw implements overlay.Host.
func (s *Shell) RequestRedraw() {
	s.dirty.Store(true)
}

// Show implements overlay.Host. The display is grabbed before the window
// appears so the backdrop does not contain the overlay.
func (s *Shell) Show() {
	var bg image.Image
	if s.backdrop != nil {
		img, err := s.backdrop.CaptureDisplay()
		if err != nil {
			log.Printf("Overlay: backdrop capture failed: %v", err)
		} else {
			bg = img
		}
	}
	s.visible.Store(true)
	fyne.Do(func() {
		s.ensureWindow()
		s.comp.setBackdrop(bg)
		s.lastW, s.lastH = 0, 0
		s.win.Show()
		s.win.RequestFocus()
		s.raster.Refresh()
	})
}

// Close implements overlay.Host. Closing outside a capture cancels the
// session.
func (s *Shell) Close() {
	s.visible.Store(false)
	fyne.Do(func() {
		if s.win != nil {
			s.win.Hide()
		}
	})
	st := s.ctl.Snapshot()
	if _, capturing := st.Phase().(selection.Capturing); capturing {
		return
	}
	s.finish(eventloop.Outcome{Err: eventloop.ErrSelectionCancelled})
}

func (s *Shell) refresh() {
	if s.raster != nil && s.visible.Load() {
		s.raster.Refresh()
	}
}

func (s *Shell) ensureWindow() {
	if s.win != nil {
		return
	}
	if drv, ok := s.app.Driver().(desktop.Driver); ok {
		s.win = drv.CreateSplashWindow()
	} else {
		s.win = s.app.NewWindow("screen-region")
	}
	s.win.SetPadded(false)
	s.win.SetFullScreen(true)

	s.raster = canvas.NewRaster(s.draw)
	s.raster.ScaleMode = canvas.ImageScalePixels
	s.win.SetContent(newView(s.raster, s.win.Canvas().Scale, s.router.Dispatch))
	s.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		s.router.Dispatch(input.KeyPressed{Key: string(ev.Name)})
	})
	s.win.SetCloseIntercept(s.Close)
}

// draw is the raster generator. w and h are in physical pixels.
func (s *Shell) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return s.comp.output()
	}
	if w != s.lastW || h != s.lastH {
		s.lastW, s.lastH = w, h
		s.router.Dispatch(input.Resized{Width: uint32(w), Height: uint32(h)})
	}
	st := s.ctl.Snapshot()
	if err := s.renderer.Draw(st); err != nil {
		log.Printf("Overlay: draw failed: %v", err)
	}
	s.frameMu.Lock()
	s.painted = st.Phase()
	s.frameMu.Unlock()
	return s.comp.output()
}
