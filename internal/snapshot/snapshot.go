// Package snapshot persists the finalized verdicts of an analysis run so a
// code generator can consult them without re-running the analysis.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"byval/internal/byvalue"
	"byval/internal/catalog"
	"byval/internal/typename"
)

// Schema is bumped whenever Payload changes shape.
const Schema uint16 = 1

// Entry is the stored form of one record.
type Entry struct {
	Type    string            `msgpack:"t"`
	Verdict uint8             `msgpack:"v"`
	Target  string            `msgpack:"a,omitempty"`
	Reason  string            `msgpack:"r,omitempty"`
	Kind    byvalue.ErrorKind `msgpack:"k,omitempty"`
	Deps    []string          `msgpack:"d,omitempty"`
}

// Payload is one snapshot file.
type Payload struct {
	Schema  uint16         `msgpack:"schema"`
	Catalog string         `msgpack:"catalog"`
	Digest  catalog.Digest `msgpack:"digest"`
	Failed  string         `msgpack:"failed,omitempty"`
	Entries []Entry        `msgpack:"entries"`

	index map[string]int
}

// FromChecker captures every record of c. confirmErr is the result of the
// confirmation step, recorded so readers know the run did not succeed.
func FromChecker(cat *catalog.Catalog, c *byvalue.Checker, confirmErr error) *Payload {
	p := &Payload{Schema: Schema, Catalog: cat.Path, Digest: cat.Digest}
	if confirmErr != nil {
		p.Failed = confirmErr.Error()
	}
	for _, e := range c.Records() {
		out := Entry{Type: e.Name.String(), Verdict: uint8(e.Verdict.Kind)}
		if !e.Verdict.Target.IsZero() {
			out.Target = e.Verdict.Target.String()
		}
		if e.Verdict.Reason != nil {
			out.Reason = e.Verdict.Reason.String()
			out.Kind = e.Verdict.Reason.Kind
		}
		for _, d := range e.Deps {
			out.Deps = append(out.Deps, d.String())
		}
		p.Entries = append(p.Entries, out)
	}
	sort.SliceStable(p.Entries, func(i, j int) bool { return p.Entries[i].Type < p.Entries[j].Type })
	return p
}

// IsConfirmedSafe answers the by-value query from the snapshot. A snapshot of
// a failed run confirms nothing.
func (p *Payload) IsConfirmedSafe(n typename.Name) bool {
	if p.Failed != "" {
		return false
	}
	e, ok := p.Lookup(n)
	return ok && byvalue.VerdictKind(e.Verdict) == byvalue.Confirmed
}

// Lookup finds the entry for n.
func (p *Payload) Lookup(n typename.Name) (Entry, bool) {
	if p.index == nil {
		p.index = make(map[string]int, len(p.Entries))
		for i, e := range p.Entries {
			p.index[e.Type] = i
		}
	}
	i, ok := p.index[n.String()]
	if !ok {
		return Entry{}, false
	}
	return p.Entries[i], true
}

// PathFor returns where the snapshot of a catalog with digest d lives in dir.
func PathFor(dir string, d catalog.Digest) string {
	return filepath.Join(dir, d.String()+".mp")
}

// Save writes p under dir, replacing any previous snapshot atomically.
func Save(dir string, p *Payload) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := PathFor(dir, p.Digest)
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	defer func() {
		_ = os.Remove(tmp) // no-op after a successful rename
	}()

	if err := msgpack.NewEncoder(f).Encode(p); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// ErrSchemaMismatch is returned for snapshots written by another schema.
var ErrSchemaMismatch = errors.New("snapshot schema mismatch")

// Load reads a snapshot file.
func Load(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Schema != Schema {
		return nil, fmt.Errorf("%s: %w (got %d, want %d)", path, ErrSchemaMismatch, p.Schema, Schema)
	}
	return &p, nil
}

// LoadFor reads the snapshot of cat from dir. ok is false when none exists.
func LoadFor(dir string, cat *catalog.Catalog) (*Payload, bool, error) {
	p, err := Load(PathFor(dir, cat.Digest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}
