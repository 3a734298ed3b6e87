package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"screen-region/src/capture"
	"screen-region/src/clipboard"
	"screen-region/src/config"
	"screen-region/src/eventloop"
	"screen-region/src/hotkey"
	"screen-region/src/logutil"
	"screen-region/src/notification"
	"screen-region/src/overlay"
	"screen-region/src/remote"
	"screen-region/src/screenshot"
	"screen-region/src/shell"
	"screen-region/src/singleinstance"
	"screen-region/src/tray"
	"screen-region/src/worker"
)

const appID = "io.github.screen-region"

// stack is the capture pipeline shared by both modes.
type stack struct {
	app  fyne.App
	pool *worker.Pool
	ctl  *overlay.Controller
	sh   *shell.Shell
}

func buildStack(cfg *config.Config, onChange func()) (*stack, error) {
	logutil.Setup(cfg.EnableFileLogging)

	store, err := capture.NewFileStore(cfg.OutputDir, cfg.CaptureFormat, cfg.CaptureQuality)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	a := fyneapp.NewWithID(appID)
	a.SetIcon(tray.Icon())

	var consumers []capture.Consumer
	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, captures will only be saved: %v", err)
		} else {
			consumers = append(consumers, clipboard.Sink{})
		}
	}
	if cfg.NotifyOnCapture {
		consumers = append(consumers, notification.New(a))
	}

	shooter := screenshot.New(0)
	pool := worker.New(1)
	trig := capture.NewTrigger(capture.Options{
		Shooter:   shooter,
		Store:     store,
		Consumers: consumers,
		Pool:      pool,
	})

	sh := shell.New(a, shooter)
	ctl := overlay.NewController(overlay.Options{
		Capturer: trig,
		OnChange: onChange,
		OnResult: sh.OnResult,
	})
	sh.Attach(ctl)

	log.Printf("Saving %s captures to %s", cfg.CaptureFormat, cfg.OutputDir)
	return &stack{app: a, pool: pool, ctl: ctl, sh: sh}, nil
}

func runResident(cfg *config.Config, ports singleinstance.PortRange) error {
	var rs atomic.Pointer[remote.Server]
	st, err := buildStack(cfg, func() {
		if srv := rs.Load(); srv != nil {
			srv.Notify()
		}
	})
	if err != nil {
		return err
	}
	defer st.pool.Close()
	logMonitorConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tr *tray.Tray
	loop := eventloop.New(eventloop.Options{
		Opener: st.sh,
		Server: singleinstance.NewServer(ports),
		Status: func(s string) { tr.SetStatus(s) },
	})
	tr = tray.Setup(st.app, loop.Trigger)

	stopHotkey, err := hotkey.Listen(cfg.Hotkey, loop.Trigger)
	if err != nil {
		log.Printf("Hotkey disabled: %v", err)
	} else {
		defer stopHotkey()
		log.Printf("Hotkey: %s", cfg.Hotkey)
	}

	if cfg.RemoteAddr != "" {
		srv := remote.NewServer(st.ctl)
		rs.Store(srv)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.RemoteAddr); err != nil {
				log.Printf("Remote: server stopped: %v", err)
			}
		}()
		log.Printf("Remote: listening on %s", cfg.RemoteAddr)
	}

	go st.sh.Run(ctx)

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		loopErr <- err
		fyne.Do(st.app.Quit)
	}()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	st.app.Run()
	cancel()

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event loop: %w", err)
	}
	return nil
}

// runStandalone opens a single overlay session without a resident and
// prints the saved path.
func runStandalone(out io.Writer, cfg *config.Config) error {
	st, err := buildStack(cfg, nil)
	if err != nil {
		return err
	}
	defer st.pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.sh.Run(ctx)

	outcome := make(chan eventloop.Outcome, 1)
	st.app.Lifecycle().SetOnStarted(func() {
		go func() {
			err := st.sh.Open(ctx, func(o eventloop.Outcome) {
				outcome <- o
				fyne.Do(st.app.Quit)
			})
			if err != nil {
				outcome <- eventloop.Outcome{Err: err}
				fyne.Do(st.app.Quit)
			}
		}()
	})
	st.app.Run()

	var o eventloop.Outcome
	select {
	case o = <-outcome:
	default:
		return eventloop.ErrSelectionCancelled
	}
	if o.Err != nil {
		return o.Err
	}
	// Consumers run on the pool; let them finish before exiting.
	st.pool.Close()
	fmt.Fprintln(out, o.Handle.Path)
	return nil
}
