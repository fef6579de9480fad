package byvalue

import (
	"byval/internal/diag"
	"byval/internal/knowntypes"
	"byval/internal/trace"
	"byval/internal/typename"
)

// Checker owns the safety state of one analysis run. It is not safe for
// concurrent use; run several catalogs with one Checker each.
type Checker struct {
	store  *Store
	tracer trace.Tracer
}

// Seed builds a store from the known-type table: one Confirmed or Unsafe
// record per entry, with no dependencies.
func Seed() *Store {
	s := NewStore()
	for _, e := range knowntypes.PodSafeTypes() {
		v := confirmed()
		if !e.ByValueSafe {
			v = unsafe(&Reason{Kind: NotByValueSafe, Type: e.Name})
		}
		s.Put(e.Name, Record{Verdict: v})
	}
	return s
}

// NewChecker returns a checker seeded with the known types.
func NewChecker() *Checker {
	return &Checker{store: Seed(), tracer: trace.Nop}
}

// SetTracer routes ingestion and resolver events to t.
func (c *Checker) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop
	}
	c.tracer = t
}

// Store exposes the underlying store.
func (c *Checker) Store() *Store {
	return c.store
}

// IsConfirmedSafe reports whether n has a record whose verdict is exactly
// Confirmed. Missing, candidate, unsafe and unresolved alias records all
// report false.
func (c *Checker) IsConfirmedSafe(n typename.Name) bool {
	rec, ok := c.store.Get(n)
	return ok && rec.Verdict.Kind == Confirmed
}

// Lookup returns a copy of the record for n.
func (c *Checker) Lookup(n typename.Name) (Record, bool) {
	rec, ok := c.store.Get(n)
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Deps = append([]typename.Name(nil), rec.Deps...)
	return out, true
}

// Entry pairs a name with a copy of its record.
type Entry struct {
	Name typename.Name
	Record
}

// Records lists every record in first-insertion order.
func (c *Checker) Records() []Entry {
	names := c.store.Names()
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		rec, _ := c.Lookup(n)
		out = append(out, Entry{Name: n, Record: rec})
	}
	return out
}

// Declared lists the records that came from ingestion, in first-insertion
// order. Known-type seeds are left out unless a declaration replaced them.
func (c *Checker) Declared() []Entry {
	seeded := make(map[typename.Name]bool)
	for _, e := range knowntypes.PodSafeTypes() {
		seeded[e.Name] = true
	}
	for _, ow := range c.store.Overwrites() {
		delete(seeded, ow.Name)
	}
	var out []Entry
	for _, e := range c.Records() {
		if !seeded[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

// Explain reports unsafe declared types as warnings, confirmed ones as info,
// and ingestion overwrites of a different verdict kind as warnings.
func (c *Checker) Explain(r diag.Reporter) {
	for _, ow := range c.store.Overwrites() {
		if ow.Before.Kind == ow.After.Kind {
			continue
		}
		diag.ReportWarning(r, diag.CatDuplicateDecl, ow.Name.String(),
			"declaration replaced an earlier "+ow.Before.Kind.String()+" verdict with "+ow.After.Kind.String()).
			WithNote(ow.Name.String(), "was "+ow.Before.String()).
			Emit()
	}
	for _, e := range c.Declared() {
		switch e.Verdict.Kind {
		case Unsafe:
			diag.ReportWarning(r, e.Verdict.Reason.Kind.Code(), e.Name.String(), e.Verdict.Reason.String()).Emit()
		case Confirmed:
			diag.ReportInfo(r, diag.ByvConfirmed, e.Name.String(), "by-value safe").Emit()
		}
	}
}
