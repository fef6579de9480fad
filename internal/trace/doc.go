// Package trace records what an analysis run did: which phases ran, which
// types were ingested with which verdict, and the order the resolver popped
// its worklist.
//
// Enable it from the CLI:
//
//	byval check --trace=- --trace-level=debug byval.toml
//
// Levels gate scopes: phase shows run and phase boundaries, detail adds
// per-catalog events, debug adds one event per type decision. The nop tracer
// is used whenever tracing is off, so producers never need nil checks:
//
//	t := trace.FromContext(ctx)
//	span := trace.Begin(t, trace.ScopePhase, "ingest", 0)
//	defer span.End("")
//	trace.Point(t, trace.ScopeType, "ingest", "ns::Foo -> candidate")
package trace
