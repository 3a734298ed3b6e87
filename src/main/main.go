package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-region/src/config"
	"screen-region/src/singleinstance"
)

const delegationTimeout = 10 * time.Minute

type mainOptions struct {
	runOnce    bool
	hotkey     string
	outputDir  string
	remoteAddr string
}

type runOnceClient interface {
	TryRunOnce(ctx context.Context) (bool, string, error)
}

// legacyLongFlags are accepted with a single dash for compatibility with
// older launch scripts.
var legacyLongFlags = []string{"run-once", "hotkey", "output-dir", "remote-addr"}

func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		arg := out[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name := strings.TrimPrefix(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		for _, f := range legacyLongFlags {
			if name == f {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-region",
		Short:         "Select a screen region and save it as an image",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "select one region, print the saved path and exit")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "override HOTKEY")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "override OUTPUT_DIR")
	cmd.Flags().StringVar(&opts.remoteAddr, "remote-addr", "", "override REMOTE_ADDR")
	return cmd
}

func (o *mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		HotkeyOverride:     o.hotkey,
		OutputDirOverride:  o.outputDir,
		RemoteAddrOverride: o.remoteAddr,
	}
}

func run(out io.Writer, opts *mainOptions) error {
	enableDPIAwareness()

	cfg, err := config.LoadWithOptions(opts.loadOptions())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ports := singleinstance.PortRange{Start: cfg.PortStart, End: cfg.PortEnd}
	if opts.runOnce {
		ctx, cancel := context.WithTimeout(context.Background(), delegationTimeout)
		defer cancel()
		return handleRunOnceWithDelegation(ctx, out, singleinstance.NewClient(ports), func() error {
			return runStandalone(out, cfg)
		})
	}
	return runResident(cfg, ports)
}

// handleRunOnceWithDelegation hands the selection to a resident instance
// when one answers, and runs fallback otherwise. A resident that accepted
// the request but failed it is reported, not retried locally.
func handleRunOnceWithDelegation(ctx context.Context, out io.Writer, client runOnceClient, fallback func() error) error {
	delegated, path, err := client.TryRunOnce(ctx)
	switch {
	case delegated && err != nil:
		return fmt.Errorf("resident: %w", err)
	case delegated:
		log.Printf("Delegated to resident")
		fmt.Fprintln(out, path)
		return nil
	case err != nil:
		log.Printf("Delegation error: %v; falling back to standalone", err)
	default:
		log.Printf("No resident detected, running standalone")
	}
	return fallback()
}

func main() {
	os.Args = normalizeLegacyArgs(os.Args)
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
