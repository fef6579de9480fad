package byvalue

import (
	"errors"
	"strings"
	"testing"

	"byval/internal/catalog"
	"byval/internal/knowntypes"
	"byval/internal/typename"
)

func n(s string) typename.Name { return typename.Parse(s) }

func names(ss ...string) []typename.Name {
	out := make([]typename.Name, len(ss))
	for i, s := range ss {
		out[i] = n(s)
	}
	return out
}

func structDecl(name string, fieldTypes ...string) catalog.Decl {
	return catalog.Struct(n(name), false, catalog.Fields(names(fieldTypes...)...)...)
}

func mustConfirm(t *testing.T, c *Checker, req ...string) {
	t.Helper()
	if err := c.Confirm(names(req...)); err != nil {
		t.Fatalf("Confirm(%v): %v", req, err)
	}
}

func confirmErr(t *testing.T, c *Checker, req ...string) *Error {
	t.Helper()
	err := c.Confirm(names(req...))
	if err == nil {
		t.Fatalf("Confirm(%v) succeeded, want error", req)
	}
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("Confirm(%v) error %T is not *Error", req, err)
	}
	return be
}

func TestPrimitiveBySelf(t *testing.T) {
	c := NewChecker()
	if !c.IsConfirmedSafe(n("u32")) {
		t.Fatalf("u32 should be confirmed right after seeding")
	}
	for _, e := range knowntypes.PodSafeTypes() {
		if got := c.IsConfirmedSafe(e.Name); got != e.ByValueSafe {
			t.Fatalf("IsConfirmedSafe(%s) = %v, want %v", e.Name, got, e.ByValueSafe)
		}
	}
}

func TestPrimitives(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(structDecl("Foo", "i32", "i64"))
	if c.IsConfirmedSafe(n("Foo")) {
		t.Fatalf("candidate must not count as confirmed before Confirm")
	}
	mustConfirm(t, c, "Foo")
	if !c.IsConfirmedSafe(n("Foo")) {
		t.Fatalf("Foo should be confirmed")
	}
}

func TestNestedPrimitivesConfirmTransitively(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("ns::Foo", "i32", "i64"),
		structDecl("ns::Bar", "ns::Foo", "i64"),
	})
	mustConfirm(t, c, "ns::Bar")
	if !c.IsConfirmedSafe(n("ns::Bar")) || !c.IsConfirmedSafe(n("ns::Foo")) {
		t.Fatalf("confirming Bar must confirm Foo too")
	}
}

func TestUniquePtrFieldIsSafe(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(structDecl("Bar", "cxx::UniquePtr<CxxString>", "i64"))
	mustConfirm(t, c, "Bar")
	if !c.IsConfirmedSafe(n("Bar")) {
		t.Fatalf("Bar holding a UniquePtr should be by-value safe")
	}
}

func TestCxxStringFieldIsUnsafe(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(structDecl("Bar", "CxxString", "i64"))
	be := confirmErr(t, c, "Bar")
	if be.Kind != DependentTypeUnsafe {
		t.Fatalf("kind = %s, want %s", be.Kind, DependentTypeUnsafe)
	}
	want := "type Bar could not be by-value because its dependent type CxxString isn't safe to be by-value. " +
		"Because: type CxxString is not safe for by-value use"
	if be.Error() != want {
		t.Fatalf("message:\n got %q\nwant %q", be.Error(), want)
	}
	if c.IsConfirmedSafe(n("Bar")) {
		t.Fatalf("Bar must not be confirmed")
	}
}

func TestUnknownFieldIsDeclarationMissing(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(structDecl("Bar", "u8", "ns::Mystery"))
	be := confirmErr(t, c, "Bar")
	if be.Kind != DeclarationMissing {
		t.Fatalf("kind = %s, want %s", be.Kind, DeclarationMissing)
	}
	if be.Reason.Dependent != n("ns::Mystery") {
		t.Fatalf("dependent = %s, want ns::Mystery", be.Reason.Dependent)
	}
	if want := "type Bar could not be by-value because its dependent type ns::Mystery isn't known"; be.Error() != want {
		t.Fatalf("message = %q, want %q", be.Error(), want)
	}
}

func TestRequestNeverDeclared(t *testing.T) {
	c := NewChecker()
	be := confirmErr(t, c, "ns::Ghost")
	if be.Kind != DeclarationMissing || be.Type != n("ns::Ghost") {
		t.Fatalf("unexpected error %+v", be)
	}
	if want := "Unable to confirm ns::Ghost because we never saw a declaration"; be.Error() != want {
		t.Fatalf("message = %q, want %q", be.Error(), want)
	}
}

func TestForwardDeclarationCreatesNoRecord(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Forward(n("ns::Later")))
	if _, ok := c.Lookup(n("ns::Later")); ok {
		t.Fatalf("forward declaration must not create a record")
	}
	be := confirmErr(t, c, "ns::Later")
	if be.Kind != DeclarationMissing {
		t.Fatalf("kind = %s, want %s", be.Kind, DeclarationMissing)
	}
}

func TestEnumIsConfirmedOnIngest(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Enum(n("ns::Color")))
	if !c.IsConfirmedSafe(n("ns::Color")) {
		t.Fatalf("enum should be confirmed without a request")
	}
}

func TestVirtualDispatch(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Struct(n("Virt"), true, catalog.Fields(n("u8"))...),
		catalog.Struct(n("WithVtable"), false,
			catalog.Field{Name: catalog.VtableField, Type: n("usize")},
			catalog.Field{Name: "x", Type: n("u32")},
		),
	})
	for _, name := range []string{"Virt", "WithVtable"} {
		be := confirmErr(t, c, name)
		if be.Kind != HasVirtualDispatch {
			t.Fatalf("%s: kind = %s, want %s", name, be.Kind, HasVirtualDispatch)
		}
		if want := "type " + name + " could not be by-value because it has virtual functions"; be.Error() != want {
			t.Fatalf("%s: message = %q", name, be.Error())
		}
	}
}

func TestFieldProblemsOutrankVirtualDispatch(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Struct(n("S"), true, catalog.Fields(n("CxxString"), n("Unknown"))...))
	rec, ok := c.Lookup(n("S"))
	if !ok || rec.Verdict.Kind != Unsafe {
		t.Fatalf("S should be unsafe, got %+v", rec)
	}
	// missing fields are checked before unsafe ones, and both before the vtable
	if rec.Verdict.Reason.Kind != DeclarationMissing || rec.Verdict.Reason.Dependent != n("Unknown") {
		t.Fatalf("reason = %s", rec.Verdict.Reason)
	}
}

func TestNonPathFieldsAddNoDependency(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Struct(n("S"), false,
		catalog.Field{Name: "arr"},
		catalog.Field{Name: "x", Type: n("u16")},
	))
	rec, _ := c.Lookup(n("S"))
	if len(rec.Deps) != 1 || rec.Deps[0] != n("u16") {
		t.Fatalf("deps = %v, want [u16]", rec.Deps)
	}
}

func TestNestedReasonChain(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("Inner", "std::string"),
		structDecl("Outer", "u8", "Inner"),
	})
	be := confirmErr(t, c, "Outer")
	msg := be.Error()
	for _, part := range []string{
		"type Outer could not be by-value because its dependent type Inner isn't safe",
		"Because: type Inner could not be by-value because its dependent type std::string isn't safe",
		"Because: type std::string is not safe for by-value use",
	} {
		if !strings.Contains(msg, part) {
			t.Fatalf("message missing %q:\n%s", part, msg)
		}
	}
	if root := be.Reason.Root(); root.Kind != NotByValueSafe || root.Type != n("std::string") {
		t.Fatalf("root = %+v", root)
	}
	d := be.Diagnostic()
	if d.Subject != "Outer" || len(d.Notes) != 3 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestIdempotentConfirm(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(structDecl("Foo", "u8"))
	mustConfirm(t, c, "Foo")
	before, _ := c.Lookup(n("Foo"))
	mustConfirm(t, c, "Foo")
	after, _ := c.Lookup(n("Foo"))
	if before.Verdict != after.Verdict {
		t.Fatalf("verdict changed: %v -> %v", before.Verdict, after.Verdict)
	}

	c.IngestDecl(structDecl("Bad", "CxxVector"))
	first := confirmErr(t, c, "Bad")
	second := confirmErr(t, c, "Bad")
	if first.Error() != second.Error() {
		t.Fatalf("reason changed between calls:\n%s\n%s", first, second)
	}
}

func TestConfirmedVerdictsSurviveLaterFailure(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{structDecl("Good", "u8"), catalog.Opaque(n("Blob"))})
	// Good is popped first (pushed last) and stays confirmed after Blob fails
	confirmErr(t, c, "Blob", "Good")
	if !c.IsConfirmedSafe(n("Good")) {
		t.Fatalf("Good should remain confirmed")
	}
}

func TestQueryIsConservative(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("Cand", "u8"),
		catalog.Alias(n("Al"), n("u8")),
		catalog.Opaque(n("Op")),
	})
	for _, name := range []string{"Cand", "Al", "Op", "Absent"} {
		if c.IsConfirmedSafe(n(name)) {
			t.Fatalf("%s must not be reported safe without confirmation", name)
		}
	}
}

func TestDeclaredSkipsUntouchedSeeds(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("ns::Foo", "u8"),
		catalog.Opaque(n("u8")),
	})
	var got []string
	for _, e := range c.Declared() {
		got = append(got, e.Name.String())
	}
	// u8 keeps its seeded position, ahead of ns::Foo
	if strings.Join(got, ",") != "u8,ns::Foo" {
		t.Fatalf("declared = %v", got)
	}
}
