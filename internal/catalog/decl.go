// Package catalog describes the declared foreign types fed into the by-value
// analysis and loads them from TOML catalog files.
package catalog

import (
	"fmt"

	"byval/internal/typename"
)

// DeclKind enumerates declaration record kinds.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclStruct
	DeclEnum
	DeclAlias
	DeclOpaque
	// DeclForward is a type with no full definition; it never gets a record.
	DeclForward
)

func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	case DeclAlias:
		return "alias"
	case DeclOpaque:
		return "opaque"
	case DeclForward:
		return "forward"
	default:
		return fmt.Sprintf("DeclKind(%d)", k)
	}
}

// ParseDeclKind converts the catalog spelling of a kind.
func ParseDeclKind(s string) (DeclKind, error) {
	switch s {
	case "struct":
		return DeclStruct, nil
	case "enum":
		return DeclEnum, nil
	case "alias":
		return DeclAlias, nil
	case "opaque":
		return DeclOpaque, nil
	case "forward":
		return DeclForward, nil
	default:
		return DeclInvalid, fmt.Errorf("unknown declaration kind %q (expected: struct|enum|alias|opaque|forward)", s)
	}
}

// VtableField is the field name that marks a struct as carrying a vtable.
const VtableField = "vtable_"

// Field is one struct member. Type is zero when the member is not a plain
// path type (arrays, pointers); such members add no dependency.
type Field struct {
	Name string
	Type typename.Name
}

// Decl is one declaration record. Only the fields relevant to Kind are set.
type Decl struct {
	Kind    DeclKind
	Name    typename.Name
	Fields  []Field       // DeclStruct
	Virtual bool          // DeclStruct
	Target  typename.Name // DeclAlias; zero when the aliased type is not representable
}

// Catalog is everything one analysis run consumes.
type Catalog struct {
	Path      string
	Digest    Digest
	Blocklist []typename.Name
	Requests  []typename.Name
	Decls     []Decl
}

// Struct builds a struct declaration.
func Struct(name typename.Name, virtual bool, fields ...Field) Decl {
	return Decl{Kind: DeclStruct, Name: name, Fields: fields, Virtual: virtual}
}

// Enum builds an enum declaration.
func Enum(name typename.Name) Decl {
	return Decl{Kind: DeclEnum, Name: name}
}

// Alias builds a typedef declaration. Pass the zero Name as target for a
// typedef to something that cannot be represented.
func Alias(name, target typename.Name) Decl {
	return Decl{Kind: DeclAlias, Name: name, Target: target}
}

// Opaque builds a declaration whose structure is unknown.
func Opaque(name typename.Name) Decl {
	return Decl{Kind: DeclOpaque, Name: name}
}

// Forward builds a forward declaration.
func Forward(name typename.Name) Decl {
	return Decl{Kind: DeclForward, Name: name}
}

// Fields builds unnamed fields from type names, in order.
func Fields(types ...typename.Name) []Field {
	out := make([]Field, len(types))
	for i, ty := range types {
		out[i] = Field{Name: fmt.Sprintf("f%d", i), Type: ty}
	}
	return out
}

// FieldTypes returns the types of all path-typed fields, in declaration order.
func (d Decl) FieldTypes() []typename.Name {
	out := make([]typename.Name, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Type.IsZero() {
			continue
		}
		out = append(out, f.Type)
	}
	return out
}

// HasVirtualDispatch reports whether the struct carries a vtable, either
// declared explicitly or via a vtable_ member.
func (d Decl) HasVirtualDispatch() bool {
	if d.Virtual {
		return true
	}
	for _, f := range d.Fields {
		if f.Name == VtableField {
			return true
		}
	}
	return false
}
