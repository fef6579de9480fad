package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"byval/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// returned cleanup stops them and reports write failures on stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}

	session, err := prof.Start(prof.Config{CPUPath: cpuProfile, MemPath: memProfile})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
