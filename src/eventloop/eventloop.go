package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screen-region/src/capture"
	"screen-region/src/singleinstance"
)

// ErrSelectionCancelled reports a session closed without a capture.
var ErrSelectionCancelled = errors.New("selection cancelled")

// ErrBusy reports a request that arrived while a session was open.
var ErrBusy = errors.New("busy, please retry")

// Outcome is how an overlay session ended.
type Outcome struct {
	Handle capture.Handle
	Err    error
}

// Opener opens an overlay session. Open returns once the overlay is shown;
// done is called exactly once when the session ends, from any goroutine.
type Opener interface {
	Open(ctx context.Context, done func(Outcome)) error
}

// Loop is the single-threaded coordinator for hotkey, tray and delegated
// selection requests. At most one overlay session is open at a time.
type Loop struct {
	opener    Opener
	srv       singleinstance.Server
	status    func(string)
	selecting bool
	results   chan result
	requests  chan struct{}
}

type result struct {
	outcome Outcome
	target  resultTarget
}

type resultTarget interface {
	OnSuccess(h capture.Handle)
	OnFailure(err error)
	Close()
}

type localTarget struct {
	status func(string)
}

func (t localTarget) OnSuccess(h capture.Handle) {
	log.Printf("Loop: capture saved to %s", h.Path)
	t.status(fmt.Sprintf("Last capture: %dx%d", h.Bounds.W, h.Bounds.H))
}

func (t localTarget) OnFailure(err error) {
	switch {
	case errors.Is(err, ErrSelectionCancelled):
		log.Printf("Loop: selection cancelled")
		return
	case errors.Is(err, ErrBusy):
		log.Printf("Loop: overlay already open")
		return
	}
	log.Printf("Loop: selection failed: %v", err)
	t.status("Capture failed")
}

func (localTarget) Close() {}

type delegatedTarget struct {
	conn singleinstance.Conn
}

func (t delegatedTarget) OnSuccess(h capture.Handle) {
	if err := t.conn.RespondSuccess(h.Path); err != nil {
		log.Printf("Loop: delegated reply failed: %v", err)
	}
}

func (t delegatedTarget) OnFailure(err error) {
	if rerr := t.conn.RespondError(err.Error()); rerr != nil {
		log.Printf("Loop: delegated reply failed: %v", rerr)
	}
}

func (t delegatedTarget) Close() { _ = t.conn.Close() }

// Options configures a Loop. Server and Status are optional.
type Options struct {
	Opener Opener
	Server singleinstance.Server
	// Status receives short user-facing status lines, e.g. for the tray.
	Status func(string)
}

func New(opts Options) *Loop {
	status := opts.Status
	if status == nil {
		status = func(string) {}
	}
	return &Loop{
		opener:   opts.Opener,
		srv:      opts.Server,
		status:   status,
		results:  make(chan result, 1),
		requests: make(chan struct{}, 4),
	}
}

// Trigger asks for a new selection session. It never blocks and may be
// called from any goroutine, such as the hotkey hook or the tray menu.
func (l *Loop) Trigger() {
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

// Run serves requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	reqCh := make(chan singleinstance.Conn, 4)
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		defer l.srv.Close()
		if p := l.srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		go func() {
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.requests:
			l.startSession(ctx, localTarget{status: l.status})
		case conn := <-reqCh:
			l.startSession(ctx, delegatedTarget{conn: conn})
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) startSession(ctx context.Context, target resultTarget) {
	if l.selecting {
		log.Printf("Loop: session already open, rejecting request")
		target.OnFailure(ErrBusy)
		target.Close()
		return
	}
	if l.opener == nil {
		target.OnFailure(errors.New("no overlay available"))
		target.Close()
		return
	}

	l.selecting = true
	err := l.opener.Open(ctx, func(o Outcome) {
		l.results <- result{outcome: o, target: target}
	})
	if err != nil {
		l.selecting = false
		log.Printf("Loop: failed to open overlay: %v", err)
		target.OnFailure(fmt.Errorf("failed to open overlay: %w", err))
		target.Close()
	}
}

func (l *Loop) handleResult(res result) {
	l.selecting = false
	defer res.target.Close()

	if res.outcome.Err != nil {
		res.target.OnFailure(res.outcome.Err)
		return
	}
	res.target.OnSuccess(res.outcome.Handle)
}
