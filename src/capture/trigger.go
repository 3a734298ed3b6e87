package capture

import (
	"context"
	"fmt"
	"log"

	"screen-region/src/selection"
	"screen-region/src/worker"
)

// Trigger turns confirmed bounds into a capture and fans the result out.
type Trigger struct {
	shooter   Shooter
	store     Store
	consumers []Consumer
	pool      *worker.Pool
}

// Options configures a Trigger. Store, Consumers and Pool are optional;
// without a Pool consumers run inline.
type Options struct {
	Shooter   Shooter
	Store     Store
	Consumers []Consumer
	Pool      *worker.Pool
}

func NewTrigger(opts Options) *Trigger {
	return &Trigger{
		shooter:   opts.Shooter,
		store:     opts.Store,
		consumers: opts.Consumers,
		pool:      opts.Pool,
	}
}

// Fire captures b, stores the image and hands it to the consumers.
// Screenshot and store failures wrap selection.ErrCaptureFailed.
func (t *Trigger) Fire(ctx context.Context, b selection.Bounds) (Handle, error) {
	if b.Empty() || b.X < 0 || b.Y < 0 {
		return Handle{}, fmt.Errorf("%w: %+v", selection.ErrInvalidGeometry, b)
	}
	if t.shooter == nil {
		return Handle{}, fmt.Errorf("%w: no screenshot backend", selection.ErrCaptureFailed)
	}

	log.Printf("Capture: region x=%d y=%d w=%d h=%d", b.X, b.Y, b.W, b.H)
	h, err := t.shooter.CaptureRegion(ctx, int32(b.X), int32(b.Y), uint32(b.W), uint32(b.H))
	if err != nil {
		log.Printf("Capture: screenshot failed: %v", err)
		return Handle{}, fmt.Errorf("%w: %w", selection.ErrCaptureFailed, err)
	}
	h.Bounds = b

	if t.store != nil {
		if err := t.store.Store(ctx, &h); err != nil {
			log.Printf("Capture: store failed: %v", err)
			return h, fmt.Errorf("%w: store: %w", selection.ErrCaptureFailed, err)
		}
		log.Printf("Capture: stored at %s", h.Path)
	}

	t.dispatch(ctx, h)
	return h, nil
}

func (t *Trigger) dispatch(ctx context.Context, h Handle) {
	if len(t.consumers) == 0 {
		return
	}
	run := func(ctx context.Context) error {
		var firstErr error
		for _, c := range t.consumers {
			if err := c.Consume(ctx, h); err != nil {
				log.Printf("Capture: consumer %s failed: %v", c.Name(), err)
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", c.Name(), err)
				}
			}
		}
		return firstErr
	}

	if t.pool == nil {
		_ = run(ctx)
		return
	}
	// Consumers outlive the overlay session that produced the capture.
	if !t.pool.Submit(context.WithoutCancel(ctx), "capture consumers", run, nil) {
		log.Printf("Capture: consumers busy, dropping capture %dx%d", h.Bounds.W, h.Bounds.H)
	}
}
