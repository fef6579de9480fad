package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeRun     Scope = iota + 1 // one CLI invocation
	ScopePhase                    // seed, ingest, confirm
	ScopeCatalog                  // one catalog file
	ScopeType                     // one type decision
	ScopeError                    // failures, emitted at every level but off
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopePhase:
		return "phase"
	case ScopeCatalog:
		return "catalog"
	case ScopeType:
		return "type"
	case ScopeError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier, 0 for points
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "ingest", "confirm"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
