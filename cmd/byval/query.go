package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"byval/internal/byvalue"
	"byval/internal/catalog"
	"byval/internal/diag"
	"byval/internal/diagfmt"
	"byval/internal/snapshot"
	"byval/internal/typename"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [flags] TYPE...",
		Short: "Ask whether types are confirmed by-value safe",
		Long: `Answer, for each TYPE, whether the catalog's analysis confirmed it by-value
safe. Candidates that no request reached are not confirmed. With --snapshot-dir
the answers come from a saved snapshot of the same catalog when one exists.
A failed confirmation is reported instead of any answer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQuery,
	}
	cmd.Flags().String("catalog", "", "catalog file (default: nearest byval.toml)")
	cmd.Flags().String("snapshot-dir", "", "answer from a snapshot in this directory when present")
	cmd.Flags().Bool("confirm", false, "confirm the queried types before answering")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

type queryAnswer struct {
	Type      string `json:"type"`
	Confirmed bool   `json:"confirmed"`
	Verdict   string `json:"verdict"`
	Reason    string `json:"reason,omitempty"`
	Source    string `json:"source"`
}

// verdictSource answers queries from either a live checker or a snapshot.
type verdictSource interface {
	answer(n typename.Name) queryAnswer
}

type checkerSource struct{ c *byvalue.Checker }

func (s checkerSource) answer(n typename.Name) queryAnswer {
	a := queryAnswer{Type: n.String(), Source: "analysis", Verdict: "undeclared"}
	rec, ok := s.c.Lookup(n)
	if !ok {
		return a
	}
	a.Confirmed = s.c.IsConfirmedSafe(n)
	a.Verdict = rec.Verdict.Kind.String()
	if rec.Verdict.Reason != nil {
		a.Reason = rec.Verdict.Reason.String()
	}
	return a
}

type snapshotSource struct{ p *snapshot.Payload }

func (s snapshotSource) answer(n typename.Name) queryAnswer {
	a := queryAnswer{Type: n.String(), Source: "snapshot", Verdict: "undeclared"}
	e, ok := s.p.Lookup(n)
	if !ok {
		return a
	}
	a.Confirmed = s.p.IsConfirmedSafe(n)
	a.Verdict = byvalue.VerdictKind(e.Verdict).String()
	a.Reason = e.Reason
	return a
}

func runQuery(cmd *cobra.Command, args []string) error {
	catalogPath, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return fmt.Errorf("failed to get catalog flag: %w", err)
	}
	snapshotDir, err := cmd.Flags().GetString("snapshot-dir")
	if err != nil {
		return fmt.Errorf("failed to get snapshot-dir flag: %w", err)
	}
	confirm, err := cmd.Flags().GetBool("confirm")
	if err != nil {
		return fmt.Errorf("failed to get confirm flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (must be pretty or json)", format)
	}
	if confirm && snapshotDir != "" {
		return fmt.Errorf("--confirm and --snapshot-dir cannot be used together")
	}

	if catalogPath == "" {
		paths, err := resolveCatalogPaths(nil)
		if err != nil {
			return err
		}
		catalogPath = paths[0]
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	queried := make([]typename.Name, len(args))
	for i, arg := range args {
		queried[i] = typename.Parse(arg)
		if queried[i].IsZero() {
			return fmt.Errorf("empty type name %q", arg)
		}
	}

	var src verdictSource
	if snapshotDir != "" {
		p, ok, err := snapshot.LoadFor(snapshotDir, cat)
		if err != nil {
			return err
		}
		// a snapshot of a failed run is re-analyzed so the failure is reported
		if ok && p.Failed == "" {
			src = snapshotSource{p}
		}
	}
	if src == nil {
		c, err := byvalue.Analyze(cmd.Context(), cat)
		if err == nil && confirm {
			err = c.Confirm(queried)
		}
		if err != nil {
			return renderQueryFailure(cmd, format, cat.Path, err)
		}
		src = checkerSource{c}
	}

	answers := make([]queryAnswer, len(queried))
	allConfirmed := true
	for i, n := range queried {
		answers[i] = src.answer(n)
		allConfirmed = allConfirmed && answers[i].Confirmed
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		err = writeJSON(out, answers)
	} else {
		useCol, colErr := useColor(cmd)
		if colErr != nil {
			return colErr
		}
		err = renderQueryPretty(out, answers, useCol)
	}
	if err != nil {
		return err
	}
	if !allConfirmed {
		return errFailed
	}
	return nil
}

// renderQueryFailure reports a failed confirmation instead of any answers.
func renderQueryFailure(cmd *cobra.Command, format, catalogPath string, confirmErr error) error {
	bag := diag.NewBag(1)
	bag.Add(confirmDiagnostic(catalogPath, confirmErr))
	out := cmd.OutOrStdout()
	var err error
	if format == "json" {
		err = diagfmt.JSON(out, catalogPath, bag, diagfmt.JSONOpts{IncludeNotes: true})
	} else {
		useCol, colErr := useColor(cmd)
		if colErr != nil {
			return colErr
		}
		err = diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{Color: useCol, ShowNotes: true})
	}
	if err != nil {
		return err
	}
	return errFailed
}

func renderQueryPretty(out io.Writer, answers []queryAnswer, useCol bool) error {
	yes := color.New(color.FgGreen)
	no := color.New(color.FgRed)
	for _, c := range []*color.Color{yes, no} {
		if useCol {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, a := range answers {
		line := fmt.Sprintf("%s: %s", a.Type, yes.Sprint("confirmed"))
		if !a.Confirmed {
			line = fmt.Sprintf("%s: %s (%s)", a.Type, no.Sprint("not confirmed"), a.Verdict)
			if a.Reason != "" {
				line += ": " + a.Reason
			}
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
