package byvalue

import (
	"context"
	"fmt"

	"byval/internal/catalog"
	"byval/internal/observ"
	"byval/internal/trace"
)

// Options tunes Analyze.
type Options struct {
	// Timer, when set, receives seed, ingest and confirm phases.
	Timer *observ.Timer
	// OnPhase is called as each phase starts.
	OnPhase func(phase string)
}

func (o Options) phase(name string) {
	if o.OnPhase != nil {
		o.OnPhase(name)
	}
}

// Analyze runs a whole analysis for one catalog: seed, blocklist, ingest
// declarations in order, then confirm the catalog's requests. The returned
// checker is usable for queries even when confirmation failed.
func Analyze(ctx context.Context, cat *catalog.Catalog) (*Checker, error) {
	return AnalyzeWithOptions(ctx, cat, Options{})
}

// AnalyzeWithOptions is Analyze with explicit options.
func AnalyzeWithOptions(ctx context.Context, cat *catalog.Catalog, opts Options) (*Checker, error) {
	if cat == nil {
		return nil, fmt.Errorf("byvalue: nil catalog")
	}
	tracer := trace.FromContext(ctx)
	run := trace.Begin(tracer, trace.ScopeCatalog, "analyze", 0).WithExtra("catalog", cat.Path)

	opts.phase("seed")
	idx := opts.Timer.Begin("seed")
	span := trace.Begin(tracer, trace.ScopePhase, "seed", run.ID())
	c := NewChecker()
	c.SetTracer(tracer)
	span.End(fmt.Sprintf("%d records", c.store.Len()))
	opts.Timer.End(idx, fmt.Sprintf("%d known types", c.store.Len()))

	opts.phase("ingest")
	idx = opts.Timer.Begin("ingest")
	span = trace.Begin(tracer, trace.ScopePhase, "ingest", run.ID())
	c.IngestCatalog(cat)
	span.End(fmt.Sprintf("%d records", c.store.Len()))
	opts.Timer.End(idx, fmt.Sprintf("%d declarations", len(cat.Decls)))

	opts.phase("confirm")
	idx = opts.Timer.Begin("confirm")
	span = trace.Begin(tracer, trace.ScopePhase, "confirm", run.ID())
	err := c.Confirm(cat.Requests)
	if err != nil {
		span.End("failed")
		opts.Timer.End(idx, "failed")
		run.End("failed")
		return c, err
	}
	span.End(fmt.Sprintf("%d requests", len(cat.Requests)))
	opts.Timer.End(idx, fmt.Sprintf("%d requests", len(cat.Requests)))
	run.End("ok")
	return c, nil
}
