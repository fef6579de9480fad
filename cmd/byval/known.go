package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"byval/internal/byvalue"
	"byval/internal/diagfmt"
	"byval/internal/knowntypes"
)

func newKnownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "known",
		Short: "List the built-in known types and their verdicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			switch strings.ToLower(format) {
			case "json":
				type knownJSON struct {
					Type        string `json:"type"`
					ByValueSafe bool   `json:"by_value_safe"`
				}
				entries := knowntypes.PodSafeTypes()
				out := make([]knownJSON, len(entries))
				for i, e := range entries {
					out[i] = knownJSON{Type: e.Name.String(), ByValueSafe: e.ByValueSafe}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			case "pretty":
				useCol, err := useColor(cmd)
				if err != nil {
					return err
				}
				return diagfmt.Table(cmd.OutOrStdout(), byvalue.NewChecker().Records(), diagfmt.TableOpts{Color: useCol})
			default:
				return fmt.Errorf("unknown format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}
