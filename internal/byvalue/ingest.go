package byvalue

import (
	"byval/internal/catalog"
	"byval/internal/trace"
	"byval/internal/typename"
)

// IngestCatalog applies the blocklist pre-pass and then every declaration in
// catalog order.
func (c *Checker) IngestCatalog(cat *catalog.Catalog) {
	c.IngestBlocklist(cat.Blocklist)
	c.Ingest(cat.Decls)
}

// IngestBlocklist marks each name Unsafe. A struct or enum declared later
// under the same name replaces this verdict.
func (c *Checker) IngestBlocklist(names []typename.Name) {
	for _, n := range names {
		c.put(n, Record{Verdict: unsafe(&Reason{Kind: Blocklisted, Type: n})}, "blocklist")
	}
}

// Ingest processes declarations strictly in order. Each struct is judged
// against the store as it is at that moment, so a field type declared later
// in the sequence counts as unknown. Ingestion never fails; problems become
// Unsafe verdicts.
func (c *Checker) Ingest(decls []catalog.Decl) {
	for _, d := range decls {
		c.IngestDecl(d)
	}
}

// IngestDecl processes a single declaration.
func (c *Checker) IngestDecl(d catalog.Decl) {
	switch d.Kind {
	case catalog.DeclStruct:
		c.ingestStruct(d)
	case catalog.DeclEnum:
		c.put(d.Name, Record{Verdict: confirmed()}, "enum")
	case catalog.DeclAlias:
		if d.Target.IsZero() {
			c.ingestNonPod(d.Name, "alias")
			return
		}
		c.put(d.Name, Record{Verdict: aliasOf(d.Target)}, "alias")
	case catalog.DeclOpaque:
		c.ingestNonPod(d.Name, "opaque")
	default:
		trace.Pointf(c.tracer, trace.ScopeType, "ingest", "%s %s skipped", d.Kind, d.Name)
	}
}

func (c *Checker) ingestStruct(d catalog.Decl) {
	fields := d.FieldTypes()
	rec := Record{Verdict: candidate(), Deps: fields}

	if missing, ok := c.firstMissing(fields); ok {
		rec = Record{Verdict: unsafe(&Reason{Kind: DeclarationMissing, Type: d.Name, Dependent: missing})}
	} else if field, cause, ok := c.firstUnsafe(fields); ok {
		rec = Record{Verdict: unsafe(&Reason{Kind: DependentTypeUnsafe, Type: d.Name, Dependent: field, Cause: cause})}
	} else if d.HasVirtualDispatch() {
		rec = Record{Verdict: unsafe(&Reason{Kind: HasVirtualDispatch, Type: d.Name})}
	}
	c.put(d.Name, rec, "struct")
}

func (c *Checker) firstMissing(fields []typename.Name) (typename.Name, bool) {
	for _, f := range fields {
		if _, ok := c.store.Get(f); !ok {
			return f, true
		}
	}
	return typename.Name{}, false
}

func (c *Checker) firstUnsafe(fields []typename.Name) (typename.Name, *Reason, bool) {
	for _, f := range fields {
		if rec, ok := c.store.Get(f); ok && rec.Verdict.Kind == Unsafe {
			return f, rec.Verdict.Reason, true
		}
	}
	return typename.Name{}, nil, false
}

func (c *Checker) ingestNonPod(n typename.Name, what string) {
	c.put(n, Record{Verdict: unsafe(&Reason{Kind: ComplexOrOpaqueAlias, Type: n})}, what)
}

func (c *Checker) put(n typename.Name, rec Record, what string) {
	c.store.Put(n, rec)
	trace.Pointf(c.tracer, trace.ScopeType, "ingest", "%s %s -> %s", what, n, rec.Verdict.Kind)
}
