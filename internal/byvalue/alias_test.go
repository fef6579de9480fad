package byvalue

import (
	"strings"
	"testing"

	"byval/internal/catalog"
	"byval/internal/typename"
)

func TestAliasToConfirmedType(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Alias(n("ns::Handle"), n("u32")))
	mustConfirm(t, c, "ns::Handle")
	if !c.IsConfirmedSafe(n("ns::Handle")) {
		t.Fatalf("alias of u32 should be confirmed after one Confirm")
	}
}

func TestAliasToCandidateConfirmsTarget(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("ns::Foo", "u8"),
		catalog.Alias(n("ns::FooAlias"), n("ns::Foo")),
	})
	mustConfirm(t, c, "ns::FooAlias")
	if !c.IsConfirmedSafe(n("ns::FooAlias")) || !c.IsConfirmedSafe(n("ns::Foo")) {
		t.Fatalf("alias and its struct target should both be confirmed")
	}
}

func TestAliasChain(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("A"), n("B")),
		catalog.Alias(n("B"), n("C")),
		structDecl("C", "f64"),
	})
	mustConfirm(t, c, "A")
	for _, name := range []string{"A", "B", "C"} {
		if !c.IsConfirmedSafe(n(name)) {
			t.Fatalf("%s should be confirmed", name)
		}
	}
}

func TestAliasToUnsafeFails(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Alias(n("Str"), n("std::string")))
	be := confirmErr(t, c, "Str")
	if be.Kind != DependentTypeUnsafe || be.Type != n("Str") {
		t.Fatalf("got %v, want failure about Str", be)
	}
	want := "type Str could not be by-value because its dependent type std::string isn't safe to be by-value. " +
		"Because: type std::string is not safe for by-value use"
	if be.Error() != want {
		t.Fatalf("message:\n got %q\nwant %q", be.Error(), want)
	}
	if root := be.Reason.Root(); root.Kind != NotByValueSafe || root.Type != n("std::string") {
		t.Fatalf("root = %+v", root)
	}
	rec, _ := c.Lookup(n("Str"))
	if rec.Verdict.Kind != Unsafe {
		t.Fatalf("alias should carry the copied unsafe verdict, got %s", rec.Verdict)
	}
	if again := confirmErr(t, c, "Str"); again.Error() != want {
		t.Fatalf("second confirm changed the message: %q", again.Error())
	}
}

func TestAliasChainToUnsafeNamesEveryLink(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("ns::Str"), n("ns::Inner")),
		catalog.Alias(n("ns::Inner"), n("CxxString")),
		structDecl("ns::Holder", "ns::Str"),
	})
	be := confirmErr(t, c, "ns::Holder")
	msg := be.Error()
	for _, part := range []string{
		"type ns::Str could not be by-value because its dependent type ns::Inner isn't safe",
		"Because: type ns::Inner could not be by-value because its dependent type CxxString isn't safe",
		"Because: type CxxString is not safe for by-value use",
	} {
		if !strings.Contains(msg, part) {
			t.Fatalf("message missing %q:\n%s", part, msg)
		}
	}
	d := be.Diagnostic()
	if d.Subject != "ns::Str" || len(d.Notes) != 3 || d.Notes[0].Msg != "is a typedef of ns::Inner" {
		t.Fatalf("diagnostic = %+v", d)
	}
	inner, _ := c.Lookup(n("ns::Inner"))
	if inner.Verdict.Kind != Unsafe || inner.Verdict.Reason.Type != n("ns::Inner") {
		t.Fatalf("inner alias verdict = %s", inner.Verdict)
	}
}

func TestAliasToMissingTarget(t *testing.T) {
	c := NewChecker()
	c.IngestDecl(catalog.Alias(n("Dangling"), n("ns::Nowhere")))
	be := confirmErr(t, c, "Dangling")
	if be.Kind != DeclarationMissing || be.Type != n("ns::Nowhere") {
		t.Fatalf("got %v, want missing ns::Nowhere", be)
	}
}

func TestAliasCycleIsRejected(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("A"), n("B")),
		catalog.Alias(n("B"), n("A")),
		catalog.Alias(n("Self"), n("Self")),
	})
	be := confirmErr(t, c, "A")
	if be.Kind != AliasCycle {
		t.Fatalf("kind = %s, want %s", be.Kind, AliasCycle)
	}
	if want := "type A is a typedef cycle (A -> B -> A)"; be.Error() != want {
		t.Fatalf("message = %q, want %q", be.Error(), want)
	}
	if be := confirmErr(t, c, "Self"); be.Kind != AliasCycle {
		t.Fatalf("self alias: kind = %s", be.Kind)
	}
}

func TestComplexAliasAndOpaque(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("FnPtr"), typename.Name{}),
		catalog.Opaque(n("Blob")),
	})
	for _, name := range []string{"FnPtr", "Blob"} {
		be := confirmErr(t, c, name)
		if be.Kind != ComplexOrOpaqueAlias {
			t.Fatalf("%s: kind = %s", name, be.Kind)
		}
		if want := "type " + name + " is a typedef to a complex type"; be.Error() != want {
			t.Fatalf("%s: message = %q", name, be.Error())
		}
	}
}

func TestStructWithAliasField(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("Id"), n("u64")),
		structDecl("Row", "Id", "f32"),
	})
	mustConfirm(t, c, "Row")
	if !c.IsConfirmedSafe(n("Id")) {
		t.Fatalf("alias field should be resolved while confirming Row")
	}
}

func TestOnlyConfirmedAndUnsafeAreTerminal(t *testing.T) {
	for k, want := range map[VerdictKind]bool{
		NoVerdict:     false,
		SafeCandidate: false,
		AliasOf:       false,
		Confirmed:     true,
		Unsafe:        true,
	} {
		if k.Terminal() != want {
			t.Fatalf("%s.Terminal() = %v, want %v", k, k.Terminal(), want)
		}
	}
}
