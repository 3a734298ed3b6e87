package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-region/src/config"
	"screen-region/src/remote"
)

const defaultAddr = "127.0.0.1:7878"

type cliOptions struct {
	addr       string
	jsonOutput bool
	verbose    bool
	timeout    time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout)
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"region-cli"}
	}
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetOut(out)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

// command describes one subcommand: its argument count and how its
// arguments become a request.
type command struct {
	use   string
	short string
	nargs int
	build func(args []string) (remote.Message, error)
}

var commands = []command{
	{"state", "Print the overlay phase and selection", 0, fixed(remote.TypeGetState)},
	{"cursor X Y", "Move the cursor to physical pixel X,Y", 2, buildCursor},
	{"down", "Press the primary button", 0, fixed(remote.TypeMouseDown)},
	{"up", "Release the primary button", 0, fixed(remote.TypeMouseUp)},
	{"enter", "Request a capture of the confirmed selection", 0, fixed(remote.TypeKeyEnter)},
	{"escape", "Cancel the selection or close the overlay", 0, fixed(remote.TypeKeyEscape)},
	{"size W H", "Set the overlay size in physical pixels", 2, buildSize},
	{"ready", "Show the overlay", 0, fixed(remote.TypeReady)},
	{"capture", "Capture the selection and print the saved path", 0, fixed(remote.TypeDoCapture)},
}

func fixed(typ string) func([]string) (remote.Message, error) {
	return func([]string) (remote.Message, error) { return remote.Message{Type: typ}, nil }
}

func buildCursor(args []string) (remote.Message, error) {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return remote.Message{}, fmt.Errorf("invalid X %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return remote.Message{}, fmt.Errorf("invalid Y %q: %w", args[1], err)
	}
	return remote.Message{Type: remote.TypeCursor, X: x, Y: y}, nil
}

func buildSize(args []string) (remote.Message, error) {
	w, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return remote.Message{}, fmt.Errorf("invalid width %q: %w", args[0], err)
	}
	h, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return remote.Message{}, fmt.Errorf("invalid height %q: %w", args[1], err)
	}
	return remote.Message{Type: remote.TypeSetWindowSize, Width: uint32(w), Height: uint32(h)}, nil
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "region-cli",
		Short:         "Drive a screen-region overlay over its remote socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.addr, "addr", "", "remote address (default REMOTE_ADDR or "+defaultAddr+")")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print raw JSON replies")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output to stderr")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	for _, c := range commands {
		c := c
		root.AddCommand(&cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  cobra.ExactArgs(c.nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				req, err := c.build(args)
				if err != nil {
					return err
				}
				return send(cmd.Context(), cmd.OutOrStdout(), *opts, req)
			},
		})
	}
	return root
}

func resolveAddr(opts cliOptions) string {
	if opts.addr != "" {
		return opts.addr
	}
	if cfg, err := config.Load(); err == nil && cfg.RemoteAddr != "" {
		return cfg.RemoteAddr
	}
	return defaultAddr
}

func send(ctx context.Context, out io.Writer, opts cliOptions, req remote.Message) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	addr := resolveAddr(opts)
	log.Printf("Remote: %s -> %s", req.Type, addr)
	c, err := remote.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer c.Close()

	reply, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return printReply(out, reply, opts.jsonOutput)
}

func printReply(out io.Writer, m remote.Message, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		return enc.Encode(m)
	}
	switch m.Type {
	case remote.TypeCaptured:
		_, err := fmt.Fprintln(out, m.Path)
		return err
	default:
		if m.Bounds == nil {
			_, err := fmt.Fprintln(out, m.Phase)
			return err
		}
		b := m.Bounds
		_, err := fmt.Fprintf(out, "%s %d,%d %dx%d\n", m.Phase, b.X, b.Y, b.W, b.H)
		return err
	}
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"addr", "json", "verbose", "timeout"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}
