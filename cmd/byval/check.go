package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"byval/internal/byvalue"
	"byval/internal/catalog"
	"byval/internal/diag"
	"byval/internal/diagfmt"
	"byval/internal/observ"
	"byval/internal/snapshot"
	"byval/internal/trace"
	"byval/internal/ui"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [catalog.toml|directory]...",
		Short: "Analyze catalogs and confirm their by-value requests",
		Long: `Analyze each catalog: seed the known types, ingest the blocklist and
declarations in order, then confirm every type listed in [config].by_value.
Without arguments the nearest byval.toml above the working directory is used.`,
		RunE: runCheck,
	}
	cmd.Flags().Int("jobs", 0, "max parallel catalogs (0=auto)")
	cmd.Flags().Bool("explain", false, "report every unsafe, confirmed and overwritten declaration")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("snapshot-dir", "", "write a verdict snapshot per catalog into this directory")
	cmd.Flags().Bool("table", false, "print the verdict of every declared type")
	cmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	return cmd
}

type checkOptions struct {
	jobs        int
	explain     bool
	format      string
	snapshotDir string
	table       bool
	ui          uiMode
	quiet       bool
	timings     bool
	maxDiag     int
	color       bool
}

// catalogResult is everything one catalog produced. Results are written by
// exactly one worker and read after all workers finished.
type catalogResult struct {
	path     string
	checker  *byvalue.Checker
	bag      *diag.Bag
	timer    *observ.Timer
	snapshot string
	failed   bool
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.explain, err = flags.GetBool("explain"); err != nil {
		return opts, fmt.Errorf("failed to get explain flag: %w", err)
	}
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unknown format %q (must be pretty or json)", opts.format)
	}
	if opts.snapshotDir, err = flags.GetString("snapshot-dir"); err != nil {
		return opts, fmt.Errorf("failed to get snapshot-dir flag: %w", err)
	}
	if opts.table, err = flags.GetBool("table"); err != nil {
		return opts, fmt.Errorf("failed to get table flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}

	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.color, err = useColor(cmd); err != nil {
		return opts, err
	}
	if opts.jobs <= 0 {
		opts.jobs = runtime.GOMAXPROCS(0)
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	paths, err := resolveCatalogPaths(args)
	if err != nil {
		return err
	}

	var results []*catalogResult
	if opts.format == "pretty" && !opts.quiet && shouldUseTUI(opts.ui, cmd.OutOrStdout()) {
		results, err = runChecksWithUI(cmd.Context(), "checking catalogs", paths, opts, cmd.OutOrStdout())
	} else {
		results, err = runChecks(cmd.Context(), paths, opts, nil)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		err = renderCheckJSON(out, results, opts)
	} else {
		err = renderCheckPretty(out, results, opts)
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.failed {
			return errFailed
		}
	}
	return nil
}

// resolveCatalogPaths maps arguments to catalog files. Directories stand for
// the byval.toml inside them; no arguments means the nearest byval.toml.
func resolveCatalogPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		path, ok, err := catalog.Find(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: no %s found in the working directory or its parents",
				diag.CatNotFound.ID(), catalog.FileName)
		}
		return []string{path}, nil
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			arg = filepath.Join(arg, catalog.FileName)
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// runChecks analyzes every catalog with at most opts.jobs running at once.
// Catalog failures are recorded in the results; only cancellation is returned.
func runChecks(ctx context.Context, paths []string, opts checkOptions, progress func(ui.Event)) ([]*catalogResult, error) {
	if progress == nil {
		progress = func(ui.Event) {}
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeRun, "check", 0).
		WithExtra("catalogs", strconv.Itoa(len(paths))).
		WithExtra("jobs", strconv.Itoa(opts.jobs))
	results := make([]*catalogResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkCatalog(gctx, path, opts, progress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("canceled")
		return nil, err
	}
	span.End("done")
	return results, nil
}

func checkCatalog(ctx context.Context, path string, opts checkOptions, progress func(ui.Event)) *catalogResult {
	res := &catalogResult{path: path, bag: diag.NewBag(opts.maxDiag)}
	if opts.timings {
		res.timer = observ.NewTimer()
	}
	finish := func() *catalogResult {
		res.bag.Sort()
		status := ui.StatusDone
		if res.failed {
			status = ui.StatusError
		}
		progress(ui.Event{Catalog: path, Status: status})
		return res
	}

	progress(ui.Event{Catalog: path, Phase: "load", Status: ui.StatusWorking})
	idx := res.timer.Begin("load")
	cat, err := catalog.Load(path)
	res.timer.End(idx, "")
	if err != nil {
		code := diag.CatParseError
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			code = diag.IOLoadFileError
		}
		res.bag.Add(diag.NewError(code, path, err.Error()))
		res.failed = true
		return finish()
	}

	c, confirmErr := byvalue.AnalyzeWithOptions(ctx, cat, byvalue.Options{
		Timer: res.timer,
		OnPhase: func(phase string) {
			progress(ui.Event{Catalog: path, Phase: phase, Status: ui.StatusWorking})
		},
	})
	res.checker = c
	if confirmErr != nil {
		// the store is left mid-confirmation; only the failure is reported
		res.failed = true
		res.bag.Add(confirmDiagnostic(path, confirmErr))
		return finish()
	}
	if opts.explain {
		c.Explain(diag.BagReporter{Bag: res.bag})
	}

	if opts.snapshotDir != "" {
		if err := saveSnapshot(cat, c, opts.snapshotDir, res); err != nil {
			res.bag.Add(diag.NewError(diag.IOSnapshotError, path, err.Error()))
			res.failed = true
		}
	}
	return finish()
}

// confirmDiagnostic turns a failed confirmation into one error diagnostic.
func confirmDiagnostic(subject string, err error) diag.Diagnostic {
	var be *byvalue.Error
	if errors.As(err, &be) {
		return be.Diagnostic()
	}
	return diag.NewError(diag.ByvAnalysisAborted, subject, err.Error())
}

func saveSnapshot(cat *catalog.Catalog, c *byvalue.Checker, dir string, res *catalogResult) error {
	var err error
	res.snapshot, err = snapshot.Save(dir, snapshot.FromChecker(cat, c, nil))
	return err
}

func renderCheckPretty(out io.Writer, results []*catalogResult, opts checkOptions) error {
	heading := color.New(color.Bold)
	if opts.color {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}
	total := 0
	for _, r := range results {
		total += r.bag.Len()
	}
	all := diag.NewBag(total)

	for _, r := range results {
		all.Merge(r.bag)
		if len(results) > 1 && !opts.quiet {
			if _, err := fmt.Fprintf(out, "%s\n", heading.Sprint("==> "+r.path)); err != nil {
				return err
			}
		}
		prettyOpts := diagfmt.PrettyOpts{
			Color:     opts.color,
			ShowNotes: true,
			ShowInfo:  opts.explain && !opts.quiet,
		}
		if err := diagfmt.Pretty(out, r.bag, prettyOpts); err != nil {
			return err
		}
		if opts.table && r.checker != nil && !r.failed {
			if err := diagfmt.Table(out, r.checker.Declared(), diagfmt.TableOpts{Color: opts.color}); err != nil {
				return err
			}
		}
		if opts.timings && r.timer != nil {
			if _, err := io.WriteString(out, r.timer.Report().Summary()); err != nil {
				return err
			}
		}
		if r.snapshot != "" && !opts.quiet {
			if _, err := fmt.Fprintf(out, "snapshot: %s\n", r.snapshot); err != nil {
				return err
			}
		}
	}
	if opts.quiet {
		return nil
	}
	return diagfmt.Summary(out, all, opts.color)
}

// checkJSON extends the diagnostics document with run details.
type checkJSON struct {
	diagfmt.DiagnosticsOutput
	OK       bool            `json:"ok"`
	Snapshot string          `json:"snapshot,omitempty"`
	Timings  *observ.Report  `json:"timings,omitempty"`
	Verdicts []verdictRecord `json:"verdicts,omitempty"`
}

type verdictRecord struct {
	Type    string `json:"type"`
	Verdict string `json:"verdict"`
	Detail  string `json:"detail,omitempty"`
}

func renderCheckJSON(out io.Writer, results []*catalogResult, opts checkOptions) error {
	docs := make([]checkJSON, 0, len(results))
	for _, r := range results {
		doc := checkJSON{
			DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(r.path, r.bag, diagfmt.JSONOpts{
				IncludeNotes: true,
				IncludeInfo:  opts.explain,
			}),
			OK:       !r.failed,
			Snapshot: r.snapshot,
		}
		if opts.timings && r.timer != nil {
			report := r.timer.Report()
			doc.Timings = &report
		}
		if opts.table && r.checker != nil && !r.failed {
			for _, e := range r.checker.Declared() {
				doc.Verdicts = append(doc.Verdicts, verdictRecord{
					Type:    e.Name.String(),
					Verdict: e.Verdict.Kind.String(),
					Detail:  verdictDetail(e),
				})
			}
		}
		docs = append(docs, doc)
	}
	return writeJSON(out, docs)
}

func verdictDetail(e byvalue.Entry) string {
	switch e.Verdict.Kind {
	case byvalue.Unsafe:
		return e.Verdict.Reason.String()
	case byvalue.AliasOf:
		return e.Verdict.Target.String()
	}
	return ""
}
