// Package typename defines the canonical identity of a declared foreign type.
//
// A Name is a namespace path plus a final identifier. Two names are equal iff
// their fully qualified paths match exactly, so Name is comparable and is used
// directly as a map key by the by-value analysis.
package typename

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins namespace segments in the rendered form.
const Separator = "::"

// Name identifies a declared type. The zero value means "no type".
type Name struct {
	ns    string // segments joined by Separator, empty for the root namespace
	ident string
}

// New builds a Name from namespace segments and a final identifier. Any
// segment or identifier spelled with Separator is split, and empty segments
// are dropped, so the result depends only on the qualified path.
func New(ns []string, ident string) Name {
	segs := make([]string, 0, len(ns)+1)
	add := func(s string) {
		for _, part := range strings.Split(s, Separator) {
			if part = normalize(part); part != "" {
				segs = append(segs, part)
			}
		}
	}
	for _, s := range ns {
		add(s)
	}
	add(ident)
	if len(segs) == 0 {
		return Name{}
	}
	last := len(segs) - 1
	return Name{ns: strings.Join(segs[:last], Separator), ident: segs[last]}
}

// Parse converts user input such as "a::b::C" into a Name. Generic arguments
// are dropped ("cxx::UniquePtr<CxxString>" becomes "cxx::UniquePtr") and a
// leading "::" is ignored. An empty input yields the zero Name.
func Parse(s string) Name {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '<'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, Separator)
	if s == "" {
		return Name{}
	}
	parts := strings.Split(s, Separator)
	return New(parts[:len(parts)-1], parts[len(parts)-1])
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsZero reports whether n is the "no type" value.
func (n Name) IsZero() bool {
	return n.ns == "" && n.ident == ""
}

// Ident returns the final identifier.
func (n Name) Ident() string {
	return n.ident
}

// Namespace returns the namespace segments, outermost first.
func (n Name) Namespace() []string {
	if n.ns == "" {
		return nil
	}
	return strings.Split(n.ns, Separator)
}

// String renders the fully qualified path.
func (n Name) String() string {
	if n.ns == "" {
		return n.ident
	}
	return n.ns + Separator + n.ident
}

// Less orders names by their rendered form.
func Less(a, b Name) bool {
	return a.String() < b.String()
}
