package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"screen-region/src/capture"
	"screen-region/src/selection"
)

type fakeHost struct {
	mu      sync.Mutex
	redraws int
	closes  int
	shows   int
}

func (h *fakeHost) RequestRedraw() { h.mu.Lock(); h.redraws++; h.mu.Unlock() }
func (h *fakeHost) Close()         { h.mu.Lock(); h.closes++; h.mu.Unlock() }
func (h *fakeHost) Show()          { h.mu.Lock(); h.shows++; h.mu.Unlock() }

func (h *fakeHost) counts() (redraws, closes, shows int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.redraws, h.closes, h.shows
}

type fakeCapturer struct {
	calls []selection.Bounds
	err   error
}

func (f *fakeCapturer) Fire(_ context.Context, b selection.Bounds) (capture.Handle, error) {
	f.calls = append(f.calls, b)
	if f.err != nil {
		return capture.Handle{}, f.err
	}
	return capture.Handle{Bounds: b, Path: "/tmp/out.png"}, nil
}

type result struct {
	h   capture.Handle
	err error
}

func newTestController(capt Capturer) (*Controller, *fakeHost, *[]result) {
	host := &fakeHost{}
	var results []result
	c := NewController(Options{
		Host:     host,
		Capturer: capt,
		OnResult: func(h capture.Handle, err error) { results = append(results, result{h, err}) },
	})
	c.SetWindowSize(400, 300)
	return c, host, &results
}

// present reports a frame painted from the current state, as a host does.
func present(c *Controller) {
	snap := c.Snapshot()
	c.FramePresented(context.Background(), snap.Phase())
}

// startDoCapture runs DoCapture in the background and returns once it is
// waiting for a frame.
func startDoCapture(t *testing.T, c *Controller, ctx context.Context) <-chan result {
	t.Helper()
	out := make(chan result, 1)
	go func() {
		h, err := c.DoCapture(ctx)
		out <- result{h, err}
	}()
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		waiting := c.waiter != nil
		c.mu.Unlock()
		if waiting {
			return out
		}
		if time.Now().After(deadline) {
			t.Fatal("DoCapture never started waiting")
		}
		time.Sleep(time.Millisecond)
	}
}

func confirm(c *Controller, x0, y0, x1, y1 float64) {
	c.Cursor(x0, y0)
	c.MouseDown()
	c.Cursor(x1, y1)
	c.MouseUp()
}

func TestEscapeInIdleClosesOverlay(t *testing.T) {
	c, host, _ := newTestController(nil)
	c.KeyEscape()
	if _, closes, _ := host.counts(); closes != 1 {
		t.Fatalf("closes = %d, want 1", closes)
	}
}

func TestEscapeWithSelectionResets(t *testing.T) {
	c, host, _ := newTestController(nil)
	confirm(c, 10, 10, 100, 100)
	before, _, _ := host.counts()

	c.KeyEscape()
	redraws, closes, _ := host.counts()
	if closes != 0 {
		t.Fatal("escape with a selection closed the overlay")
	}
	if redraws != before+1 {
		t.Fatalf("redraws = %d, want %d", redraws, before+1)
	}
	if st := c.State(); st.Phase != "Idle" || st.Bounds != nil {
		t.Fatalf("state = %+v", st)
	}
}

func TestEveryCommandRequestsRedraw(t *testing.T) {
	c, host, _ := newTestController(nil)
	start, _, _ := host.counts()
	c.Cursor(5, 5)
	c.MouseDown()
	c.MouseUp()
	c.SetWindowSize(800, 600)
	if redraws, _, _ := host.counts(); redraws != start+4 {
		t.Fatalf("redraws = %d, want %d", redraws, start+4)
	}

	c.Button(selection.ButtonSecondary, true)
	if st := c.State(); st.Phase != "Idle" {
		t.Fatalf("secondary button moved to %s", st.Phase)
	}
}

func TestEnterCapturesAfterPresentedFrame(t *testing.T) {
	capt := &fakeCapturer{}
	c, host, results := newTestController(capt)
	confirm(c, 0, 0, 100, 50)

	if !c.KeyEnter() {
		t.Fatal("KeyEnter did not arm a capture")
	}
	if c.KeyEnter() {
		t.Fatal("second KeyEnter passed the debounce")
	}
	if st := c.State(); st.Phase != "Capturing" {
		t.Fatalf("phase = %s", st.Phase)
	}
	if len(capt.calls) != 0 {
		t.Fatal("capture ran before a frame was presented")
	}

	// A frame painted before Enter still shows the selection border.
	before, _, _ := host.counts()
	c.FramePresented(context.Background(), selection.Confirmed{})
	if len(capt.calls) != 0 {
		t.Fatal("capture ran after a frame painted in Confirmed")
	}
	if redraws, _, _ := host.counts(); redraws != before+1 {
		t.Fatal("stale frame did not request the transparent frame")
	}

	present(c)
	if len(capt.calls) != 1 || capt.calls[0] != (selection.Bounds{X: 0, Y: 0, W: 100, H: 50}) {
		t.Fatalf("capture calls = %+v", capt.calls)
	}
	snap := c.Snapshot()
	if _, ok := snap.Phase().(selection.Idle); !ok || snap.CaptureDebounce() {
		t.Fatalf("after capture phase=%s debounce=%v", snap.Phase(), snap.CaptureDebounce())
	}
	if _, closes, _ := host.counts(); closes != 1 {
		t.Fatalf("closes = %d, want 1 after a successful capture", closes)
	}
	if len(*results) != 1 || (*results)[0].err != nil || (*results)[0].h.Path != "/tmp/out.png" {
		t.Fatalf("results = %+v", *results)
	}

	// The pending flag is one-shot.
	present(c)
	if len(capt.calls) != 1 {
		t.Fatalf("capture ran %d times", len(capt.calls))
	}
}

func TestFailedCaptureResetsWithoutClosing(t *testing.T) {
	capt := &fakeCapturer{err: errors.New("backend gone")}
	c, host, results := newTestController(capt)
	confirm(c, 10, 10, 200, 200)
	c.KeyEnter()
	present(c)

	if st := c.State(); st.Phase != "Idle" {
		t.Fatalf("phase = %s", st.Phase)
	}
	if snap := c.Snapshot(); snap.CaptureDebounce() {
		t.Fatal("debounce still set after failure")
	}
	if _, closes, _ := host.counts(); closes != 0 {
		t.Fatal("failed capture closed the overlay")
	}
	if len(*results) != 1 || (*results)[0].err == nil {
		t.Fatalf("results = %+v", *results)
	}

	// Without a backend the error is a capture failure.
	c2 := NewController(Options{})
	c2.SetWindowSize(400, 300)
	confirm(c2, 10, 10, 200, 200)
	if _, err := c2.DoCapture(context.Background()); !errors.Is(err, selection.ErrCaptureFailed) {
		t.Fatalf("DoCapture without backend err = %v", err)
	}
}

func TestFramePresentedRequestsAnimationFrames(t *testing.T) {
	c, host, _ := newTestController(nil)

	before, _, _ := host.counts()
	present(c)
	if redraws, _, _ := host.counts(); redraws != before {
		t.Fatal("idle overlay requested another frame")
	}

	confirm(c, 10, 10, 100, 100)
	before, _, _ = host.counts()
	present(c)
	present(c)
	if redraws, _, _ := host.counts(); redraws != before+2 {
		t.Fatalf("redraws = %d, want %d", redraws, before+2)
	}
}

func TestDoCapture(t *testing.T) {
	capt := &fakeCapturer{}
	c, host, _ := newTestController(capt)

	if _, err := c.DoCapture(context.Background()); !errors.Is(err, selection.ErrNoSelection) {
		t.Fatalf("DoCapture in Idle err = %v", err)
	}

	confirm(c, 20, 30, 120, 90)
	out := startDoCapture(t, c, context.Background())
	if st := c.State(); st.Phase != "Capturing" {
		t.Fatalf("phase = %s, want Capturing", st.Phase)
	}

	c.FramePresented(context.Background(), selection.Confirmed{})
	if len(capt.calls) != 0 {
		t.Fatal("capture ran before the transparent frame")
	}

	present(c)
	r := <-out
	if r.err != nil {
		t.Fatalf("DoCapture: %v", r.err)
	}
	if r.h.Bounds != (selection.Bounds{X: 20, Y: 30, W: 100, H: 60}) {
		t.Fatalf("handle bounds = %+v", r.h.Bounds)
	}
	if _, closes, _ := host.counts(); closes != 1 {
		t.Fatalf("closes = %d, want 1", closes)
	}
	if st := c.State(); st.Phase != "Idle" {
		t.Fatalf("phase = %s", st.Phase)
	}
}

func TestDoCaptureWithoutHostRunsImmediately(t *testing.T) {
	capt := &fakeCapturer{}
	c := NewController(Options{Capturer: capt})
	c.SetWindowSize(400, 300)
	confirm(c, 0, 0, 60, 60)

	h, err := c.DoCapture(context.Background())
	if err != nil || h.Path != "/tmp/out.png" {
		t.Fatalf("DoCapture = %+v, %v", h, err)
	}
	if len(capt.calls) != 1 {
		t.Fatalf("capture ran %d times", len(capt.calls))
	}
}

func TestDoCaptureJoinsPendingCapture(t *testing.T) {
	capt := &fakeCapturer{}
	c, _, results := newTestController(capt)
	confirm(c, 0, 0, 60, 60)
	c.KeyEnter()

	out := startDoCapture(t, c, context.Background())
	present(c)
	if r := <-out; r.err != nil || r.h.Path != "/tmp/out.png" {
		t.Fatalf("DoCapture = %+v", r)
	}
	present(c)
	if len(capt.calls) != 1 || len(*results) != 1 {
		t.Fatalf("capture ran %d times, %d results", len(capt.calls), len(*results))
	}
}

func TestDoCaptureCancelledBeforeFrame(t *testing.T) {
	capt := &fakeCapturer{}
	c, _, _ := newTestController(capt)
	confirm(c, 0, 0, 60, 60)

	ctx, cancel := context.WithCancel(context.Background())
	out := startDoCapture(t, c, ctx)
	cancel()
	if r := <-out; !errors.Is(r.err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", r.err)
	}

	present(c)
	if len(capt.calls) != 0 {
		t.Fatal("abandoned capture still ran")
	}
	snap := c.Snapshot()
	if _, ok := snap.Phase().(selection.Idle); !ok || snap.CaptureDebounce() {
		t.Fatalf("phase=%s debounce=%v", snap.Phase(), snap.CaptureDebounce())
	}
}

func TestResetReleasesWaitingCapture(t *testing.T) {
	c, _, _ := newTestController(&fakeCapturer{})
	confirm(c, 0, 0, 60, 60)
	out := startDoCapture(t, c, context.Background())

	c.Reset()
	if r := <-out; !errors.Is(r.err, ErrCaptureCancelled) {
		t.Fatalf("err = %v, want ErrCaptureCancelled", r.err)
	}
}

func TestDoCaptureBusyWhileCapturing(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	capt := &blockingCapturer{started: started, release: release}
	c, _, _ := newTestController(capt)
	confirm(c, 0, 0, 60, 60)

	out := startDoCapture(t, c, context.Background())
	if _, err := c.DoCapture(context.Background()); !errors.Is(err, ErrCaptureBusy) {
		t.Fatalf("second waiter err = %v", err)
	}

	presented := make(chan struct{})
	go func() {
		present(c)
		close(presented)
	}()
	<-started

	if _, err := c.DoCapture(context.Background()); !errors.Is(err, ErrCaptureBusy) {
		t.Fatalf("DoCapture during capture err = %v", err)
	}
	c.KeyEscape()
	if st := c.State(); st.Phase != "Capturing" {
		t.Fatalf("escape during capture changed phase to %s", st.Phase)
	}

	close(release)
	<-presented
	if r := <-out; r.err != nil {
		t.Fatalf("first DoCapture: %v", r.err)
	}
}

type blockingCapturer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCapturer) Fire(_ context.Context, bounds selection.Bounds) (capture.Handle, error) {
	close(b.started)
	<-b.release
	return capture.Handle{Bounds: bounds}, nil
}

func TestReadyShowsHost(t *testing.T) {
	c, host, _ := newTestController(nil)
	c.Ready()
	if _, _, shows := host.counts(); shows != 1 {
		t.Fatalf("shows = %d", shows)
	}
}

func TestResetCancelsPendingCapture(t *testing.T) {
	capt := &fakeCapturer{}
	c, _, _ := newTestController(capt)
	confirm(c, 0, 0, 60, 60)
	c.KeyEnter()
	c.Reset()
	present(c)

	if len(capt.calls) != 0 {
		t.Fatal("capture ran after Reset")
	}
	if snap := c.Snapshot(); snap.CaptureDebounce() {
		t.Fatal("debounce survived Reset")
	}
}

func TestStateResponseJSON(t *testing.T) {
	c, _, _ := newTestController(nil)
	data, err := json.Marshal(c.State())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"phase":"Idle","bounds":null}` {
		t.Fatalf("idle JSON = %s", data)
	}

	confirm(c, 0, 0, 100, 50)
	data, _ = json.Marshal(c.State())
	if string(data) != `{"phase":"Confirmed","bounds":{"x":0,"y":0,"w":100,"h":50}}` {
		t.Fatalf("confirmed JSON = %s", data)
	}
}

func TestConcurrentCommands(t *testing.T) {
	c, _, _ := newTestController(&fakeCapturer{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Cursor(float64(i*10+j), float64(j))
				if j%50 == 0 {
					c.MouseDown()
					c.MouseUp()
				}
				_ = c.State()
				present(c)
			}
		}(i)
	}
	wg.Wait()
}
