package byvalue

import (
	"fmt"

	"byval/internal/typename"
)

// VerdictKind is the tag of a Verdict.
type VerdictKind uint8

const (
	NoVerdict VerdictKind = iota
	// SafeCandidate: fields look acceptable, not yet required by any request.
	SafeCandidate
	// Confirmed: proven by-value safe. Terminal.
	Confirmed
	// Unsafe: proven unsafe, Reason explains why. Terminal.
	Unsafe
	// AliasOf: defers to Target's verdict.
	AliasOf
)

func (k VerdictKind) String() string {
	switch k {
	case SafeCandidate:
		return "candidate"
	case Confirmed:
		return "confirmed"
	case Unsafe:
		return "unsafe"
	case AliasOf:
		return "alias"
	default:
		return fmt.Sprintf("VerdictKind(%d)", k)
	}
}

// Terminal reports whether the verdict can no longer change during Confirm.
func (k VerdictKind) Terminal() bool {
	return k == Confirmed || k == Unsafe
}

// Verdict is the current classification of one type.
type Verdict struct {
	Kind   VerdictKind
	Reason *Reason       // Unsafe
	Target typename.Name // AliasOf
}

func confirmed() Verdict { return Verdict{Kind: Confirmed} }

func candidate() Verdict { return Verdict{Kind: SafeCandidate} }

func unsafe(r *Reason) Verdict { return Verdict{Kind: Unsafe, Reason: r} }

func aliasOf(t typename.Name) Verdict { return Verdict{Kind: AliasOf, Target: t} }

func (v Verdict) String() string {
	switch v.Kind {
	case Unsafe:
		return "unsafe: " + v.Reason.String()
	case AliasOf:
		return "alias of " + v.Target.String()
	default:
		return v.Kind.String()
	}
}

// Record is the store entry of one type. Deps lists the field types that must
// be confirmed along with it; it is only set on struct candidates.
type Record struct {
	Verdict Verdict
	Deps    []typename.Name
}

// Overwrite notes that ingestion replaced an existing record.
type Overwrite struct {
	Name   typename.Name
	Before Verdict
	After  Verdict
}

// Store maps each type to its record. Records are addressed only through
// their name, so forward and cyclic references need no pointers between
// records. A Store belongs to a single analysis run.
type Store struct {
	records    map[typename.Name]*Record
	order      []typename.Name
	overwrites []Overwrite
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[typename.Name]*Record, 64)}
}

// Get returns the live record for n.
func (s *Store) Get(n typename.Name) (*Record, bool) {
	rec, ok := s.records[n]
	return rec, ok
}

// Put inserts or replaces the record for n. A replaced name keeps its
// original position in Names.
func (s *Store) Put(n typename.Name, rec Record) {
	if prev, ok := s.records[n]; ok {
		s.overwrites = append(s.overwrites, Overwrite{Name: n, Before: prev.Verdict, After: rec.Verdict})
		*prev = rec
		return
	}
	r := rec
	s.records[n] = &r
	s.order = append(s.order, n)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Names returns every recorded name in first-insertion order.
func (s *Store) Names() []typename.Name {
	return append([]typename.Name(nil), s.order...)
}

// Overwrites lists every ingestion-time replacement in the order it happened.
func (s *Store) Overwrites() []Overwrite {
	return append([]Overwrite(nil), s.overwrites...)
}
