package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-region/src/singleinstance"
)

type stressOptions struct {
	n         int
	deadline  time.Duration
	portStart int
	portEnd   int
}

type counts struct {
	ok, busy, cancelled, absent, err int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Stress test run-once delegation against a resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := singleinstance.PortRange{Start: opts.portStart, End: opts.portEnd}
			return runWithOptions(cmd.OutOrStdout(), *opts, singleinstance.NewClient(r))
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")
	cmd.Flags().IntVar(&opts.portStart, "port-start", singleinstance.DefaultPortStart, "first port of the resident range")
	cmd.Flags().IntVar(&opts.portEnd, "port-end", singleinstance.DefaultPortEnd, "last port of the resident range")

	return cmd
}

func runWithOptions(out io.Writer, opts stressOptions, client singleinstance.Client) error {
	var wg sync.WaitGroup
	var c counts

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := client.TryRunOnce(ctx)
			c.record(delegated, err)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(out, "launched=%d ok=%d busy=%d cancelled=%d absent=%d err=%d elapsed=%s\n",
		opts.n, c.ok, c.busy, c.cancelled, c.absent, c.err, elapsed)
	return nil
}

func (c *counts) record(delegated bool, err error) {
	switch {
	case err == nil && delegated:
		atomic.AddInt32(&c.ok, 1)
	case err == nil:
		atomic.AddInt32(&c.absent, 1)
	case strings.Contains(strings.ToLower(err.Error()), "busy"):
		atomic.AddInt32(&c.busy, 1)
	case strings.Contains(err.Error(), "cancelled"), errors.Is(err, context.DeadlineExceeded):
		atomic.AddInt32(&c.cancelled, 1)
	default:
		atomic.AddInt32(&c.err, 1)
	}
}
