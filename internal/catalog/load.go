package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"byval/internal/typename"
)

// FileName is the catalog looked up when no path is given.
const FileName = "byval.toml"

// Digest is a sha256 of the catalog file contents.
type Digest [32]byte

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

type catalogFile struct {
	Config configSection `toml:"config"`
	Decls  []declEntry   `toml:"decl"`
}

type configSection struct {
	Blocklist []string `toml:"blocklist"`
	ByValue   []string `toml:"by_value"`
}

type declEntry struct {
	Kind    string       `toml:"kind"`
	Name    string       `toml:"name"`
	Virtual bool         `toml:"virtual"`
	Fields  []fieldEntry `toml:"fields"`
	Target  string       `toml:"target"`
	Complex bool         `toml:"complex"`
}

type fieldEntry struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Find walks up from startDir looking for byval.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read catalog: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes catalog contents; path is only used in error messages.
func Parse(path string, data []byte) (*Catalog, error) {
	var raw catalogFile
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cat := &Catalog{
		Path:   path,
		Digest: sha256.Sum256(data),
	}
	if cat.Blocklist, err = parseNames(raw.Config.Blocklist); err != nil {
		return nil, fmt.Errorf("%s: [config].blocklist: %w", path, err)
	}
	if cat.Requests, err = parseNames(raw.Config.ByValue); err != nil {
		return nil, fmt.Errorf("%s: [config].by_value: %w", path, err)
	}

	cat.Decls = make([]Decl, 0, len(raw.Decls))
	for i, entry := range raw.Decls {
		d, err := entry.toDecl()
		if err != nil {
			return nil, fmt.Errorf("%s: decl #%d: %w", path, i+1, err)
		}
		cat.Decls = append(cat.Decls, d)
	}
	return cat, nil
}

func parseNames(in []string) ([]typename.Name, error) {
	out := make([]typename.Name, 0, len(in))
	for _, s := range in {
		n := typename.Parse(s)
		if n.IsZero() {
			return nil, fmt.Errorf("empty type name")
		}
		out = append(out, n)
	}
	return out, nil
}

func (e declEntry) toDecl() (Decl, error) {
	kind, err := ParseDeclKind(e.Kind)
	if err != nil {
		return Decl{}, err
	}
	name := typename.Parse(e.Name)
	if name.IsZero() {
		return Decl{}, fmt.Errorf("%s declaration without a name", kind)
	}
	if kind != DeclStruct && (len(e.Fields) > 0 || e.Virtual) {
		return Decl{}, fmt.Errorf("%s %s: fields and virtual are only valid on structs", kind, name)
	}
	if kind != DeclAlias && (e.Target != "" || e.Complex) {
		return Decl{}, fmt.Errorf("%s %s: target and complex are only valid on aliases", kind, name)
	}

	switch kind {
	case DeclStruct:
		fields := make([]Field, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, Field{Name: strings.TrimSpace(f.Name), Type: typename.Parse(f.Type)})
		}
		return Struct(name, e.Virtual, fields...), nil
	case DeclAlias:
		target := typename.Parse(e.Target)
		switch {
		case !target.IsZero() && e.Complex:
			return Decl{}, fmt.Errorf("alias %s: target and complex = true are mutually exclusive", name)
		case target.IsZero() && !e.Complex:
			return Decl{}, fmt.Errorf("alias %s: needs a target or complex = true", name)
		}
		return Alias(name, target), nil
	case DeclEnum:
		return Enum(name), nil
	case DeclOpaque:
		return Opaque(name), nil
	default:
		return Forward(name), nil
	}
}
