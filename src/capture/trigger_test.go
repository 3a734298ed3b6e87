package capture

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"screen-region/src/selection"
	"screen-region/src/worker"
)

type fakeShooter struct {
	calls []selection.Bounds
	err   error
}

func (f *fakeShooter) CaptureRegion(_ context.Context, x, y int32, w, h uint32) (Handle, error) {
	f.calls = append(f.calls, selection.Bounds{X: int(x), Y: int(y), W: int(w), H: int(h)})
	if f.err != nil {
		return Handle{}, f.err
	}
	return Handle{Image: image.NewRGBA(image.Rect(0, 0, int(w), int(h)))}, nil
}

type fakeStore struct{ err error }

func (s fakeStore) Store(_ context.Context, h *Handle) error {
	if s.err != nil {
		return s.err
	}
	h.Path = "/tmp/capture.png"
	return nil
}

type recordingConsumer struct {
	mu   sync.Mutex
	got  []Handle
	err  error
	done chan struct{}
}

func newRecordingConsumer() *recordingConsumer {
	return &recordingConsumer{done: make(chan struct{}, 8)}
}

func (c *recordingConsumer) Name() string { return "recorder" }

func (c *recordingConsumer) Consume(_ context.Context, h Handle) error {
	c.mu.Lock()
	c.got = append(c.got, h)
	c.mu.Unlock()
	c.done <- struct{}{}
	return c.err
}

func TestFirePassesBoundsAndDispatches(t *testing.T) {
	shooter := &fakeShooter{}
	consumer := newRecordingConsumer()
	trig := NewTrigger(Options{Shooter: shooter, Store: fakeStore{}, Consumers: []Consumer{consumer}})

	b := selection.Bounds{X: 10, Y: 20, W: 100, H: 50}
	h, err := trig.Fire(context.Background(), b)
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if len(shooter.calls) != 1 || shooter.calls[0] != b {
		t.Fatalf("shooter calls = %+v", shooter.calls)
	}
	if h.Bounds != b || h.Path != "/tmp/capture.png" {
		t.Fatalf("handle = %+v", h)
	}
	if len(consumer.got) != 1 || consumer.got[0].Path != h.Path {
		t.Fatalf("consumer got %+v", consumer.got)
	}
}

func TestFireErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		bounds  selection.Bounds
		wantErr error
	}{
		{"empty bounds", Options{Shooter: &fakeShooter{}}, selection.Bounds{X: 1, Y: 1}, selection.ErrInvalidGeometry},
		{"no backend", Options{}, selection.Bounds{W: 30, H: 30}, selection.ErrCaptureFailed},
		{"screenshot fails", Options{Shooter: &fakeShooter{err: errors.New("no display")}}, selection.Bounds{W: 30, H: 30}, selection.ErrCaptureFailed},
		{"store fails", Options{Shooter: &fakeShooter{}, Store: fakeStore{err: errors.New("disk full")}}, selection.Bounds{W: 30, H: 30}, selection.ErrCaptureFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrigger(tt.opts).Fire(context.Background(), tt.bounds)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFireDoesNotDispatchFailedCapture(t *testing.T) {
	consumer := newRecordingConsumer()
	trig := NewTrigger(Options{
		Shooter:   &fakeShooter{err: errors.New("boom")},
		Consumers: []Consumer{consumer},
	})
	if _, err := trig.Fire(context.Background(), selection.Bounds{W: 40, H: 40}); err == nil {
		t.Fatal("expected error")
	}
	if len(consumer.got) != 0 {
		t.Fatalf("consumer ran for a failed capture: %+v", consumer.got)
	}
}

func TestFireRunsConsumersOnPool(t *testing.T) {
	pool := worker.New(1)
	defer pool.Close()

	consumer := newRecordingConsumer()
	consumer.err = errors.New("clipboard unavailable")
	trig := NewTrigger(Options{Shooter: &fakeShooter{}, Consumers: []Consumer{consumer}, Pool: pool})

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := trig.Fire(ctx, selection.Bounds{W: 30, H: 30}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	// Consumers must not be tied to the caller's context.
	cancel()

	select {
	case <-consumer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never ran")
	}
}
