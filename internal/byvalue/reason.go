package byvalue

import (
	"fmt"
	"strings"

	"byval/internal/diag"
	"byval/internal/typename"
)

// ErrorKind classifies why a type is not by-value safe.
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	// DeclarationMissing: a type, or one of a struct's field types, was never declared.
	DeclarationMissing
	// DependentTypeUnsafe: a field type is itself unsafe; the reason nests its cause.
	DependentTypeUnsafe
	HasVirtualDispatch
	Blocklisted
	// ComplexOrOpaqueAlias: an opaque declaration or a typedef to something unrepresentable.
	ComplexOrOpaqueAlias
	// NotByValueSafe: the known-type table marks the type unsafe.
	NotByValueSafe
	AliasCycle
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "none"
	case DeclarationMissing:
		return "declaration missing"
	case DependentTypeUnsafe:
		return "dependent type unsafe"
	case HasVirtualDispatch:
		return "has virtual dispatch"
	case Blocklisted:
		return "blocklisted"
	case ComplexOrOpaqueAlias:
		return "complex or opaque alias"
	case NotByValueSafe:
		return "not by-value safe"
	case AliasCycle:
		return "alias cycle"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Code maps the kind to its diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case DeclarationMissing:
		return diag.ByvDeclarationMissing
	case DependentTypeUnsafe:
		return diag.ByvDependentTypeUnsafe
	case HasVirtualDispatch:
		return diag.ByvHasVirtualDispatch
	case Blocklisted:
		return diag.ByvBlocklisted
	case ComplexOrOpaqueAlias:
		return diag.ByvComplexOrOpaqueAlias
	case NotByValueSafe:
		return diag.ByvNotByValueSafe
	case AliasCycle:
		return diag.ByvAliasCycle
	default:
		return diag.UnknownCode
	}
}

// Reason is the causal explanation attached to an Unsafe verdict. Reasons are
// immutable once built and may be shared between records.
type Reason struct {
	Kind ErrorKind
	Type typename.Name

	// Dependent is the field type that caused DependentTypeUnsafe, or the
	// unknown field type of an ingestion-time DeclarationMissing.
	Dependent typename.Name

	// Cause is the dependent type's own reason (DependentTypeUnsafe only).
	Cause *Reason

	// Alias marks a DependentTypeUnsafe inherited by a typedef from its target.
	Alias bool

	// Chain lists the aliases of an AliasCycle, starting and ending at Type.
	Chain []typename.Name
}

func (r *Reason) String() string {
	if r == nil {
		return ""
	}
	switch r.Kind {
	case NotByValueSafe:
		return fmt.Sprintf("type %s is not safe for by-value use", r.Type)
	case Blocklisted:
		return fmt.Sprintf("type %s is on the blocklist", r.Type)
	case DeclarationMissing:
		if r.Dependent.IsZero() {
			return fmt.Sprintf("Unable to confirm %s because we never saw a declaration", r.Type)
		}
		return fmt.Sprintf("type %s could not be by-value because its dependent type %s isn't known", r.Type, r.Dependent)
	case DependentTypeUnsafe:
		return fmt.Sprintf("type %s could not be by-value because its dependent type %s isn't safe to be by-value. Because: %s",
			r.Type, r.Dependent, r.Cause.String())
	case HasVirtualDispatch:
		return fmt.Sprintf("type %s could not be by-value because it has virtual functions", r.Type)
	case ComplexOrOpaqueAlias:
		return fmt.Sprintf("type %s is a typedef to a complex type", r.Type)
	case AliasCycle:
		parts := make([]string, len(r.Chain))
		for i, n := range r.Chain {
			parts[i] = n.String()
		}
		return fmt.Sprintf("type %s is a typedef cycle (%s)", r.Type, strings.Join(parts, " -> "))
	default:
		return fmt.Sprintf("type %s is not by-value safe", r.Type)
	}
}

// Root follows Cause links to the innermost reason.
func (r *Reason) Root() *Reason {
	for r != nil && r.Cause != nil {
		r = r.Cause
	}
	return r
}

// Error is returned by Confirm. Its message is the full causal chain.
type Error struct {
	Kind   ErrorKind
	Type   typename.Name
	Reason *Reason
}

func newError(r *Reason) *Error {
	return &Error{Kind: r.Kind, Type: r.Type, Reason: r}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Reason.String()
}

// Diagnostic renders the error with one note per link of the causal chain.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Kind.Code(), e.Type.String(), e.Error())
	if e.Reason == nil || e.Reason.Cause == nil {
		return d
	}
	for r := e.Reason; r != nil; r = r.Cause {
		if r.Kind == DependentTypeUnsafe {
			if r.Alias {
				d = d.WithNote(r.Type.String(), "is a typedef of "+r.Dependent.String())
			} else {
				d = d.WithNote(r.Type.String(), "holds "+r.Dependent.String()+" by value")
			}
			continue
		}
		d = d.WithNote(r.Type.String(), r.String())
	}
	return d
}
