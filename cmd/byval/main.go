package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"byval/internal/version"
)

// errFailed signals a non-zero exit after the findings were already written.
var errFailed = errors.New("check failed")

// newRootCmd builds the command tree. onSetup receives the cleanup of the
// tracer and profilers installed for the run.
func newRootCmd(onSetup func(cleanup func())) *cobra.Command {
	root := &cobra.Command{
		Use:   "byval",
		Short: "By-value safety analysis for bridged C++ types",
		Long: `byval decides which bridged C++ types may be held by value on the
Rust side of an FFI bridge, from a TOML catalog of declarations`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				stopProfiling()
				return err
			}
			onSetup(func() {
				stopTracing()
				stopProfiling()
			})
			return nil
		},
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newKnownCmd())
	root.AddCommand(newVersionCmd())

	// global flags
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep per catalog")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	return root
}

// execute runs one invocation of the CLI and flushes tracing and profiles
// afterwards, whether or not the command failed.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cleanup := func() {}
	root := newRootCmd(func(c func()) { cleanup = c })
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	cleanup()
	return err
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color; auto enables color only when stdout is a terminal.
func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			return isTerminal(f), nil
		}
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
