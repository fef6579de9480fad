package byvalue

import (
	"testing"

	"byval/internal/catalog"
)

// Ingestion judges structs against the store as it stands, so declaring a
// field type after its user leaves the user unsafe for good.
func TestForwardReferenceStaysUnsafe(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("ns::Bar", "ns::Foo"),
		structDecl("ns::Foo", "u8"),
	})
	be := confirmErr(t, c, "ns::Bar")
	if be.Kind != DeclarationMissing || be.Reason.Dependent != n("ns::Foo") {
		t.Fatalf("unexpected error %v", be)
	}
	mustConfirm(t, c, "ns::Foo")

	// same declarations bottom-up succeed
	c = NewChecker()
	c.Ingest([]catalog.Decl{
		structDecl("ns::Foo", "u8"),
		structDecl("ns::Bar", "ns::Foo"),
	})
	mustConfirm(t, c, "ns::Bar")
}

func TestBlocklist(t *testing.T) {
	c := NewChecker()
	c.IngestBlocklist(names("ns::Forbidden"))
	be := confirmErr(t, c, "ns::Forbidden")
	if be.Kind != Blocklisted {
		t.Fatalf("kind = %s, want %s", be.Kind, Blocklisted)
	}
	if want := "type ns::Forbidden is on the blocklist"; be.Error() != want {
		t.Fatalf("message = %q, want %q", be.Error(), want)
	}
}

// A struct declared after a blocklist entry with the same name replaces it.
func TestStructDeclaredAfterBlocklistWins(t *testing.T) {
	c := NewChecker()
	c.IngestCatalog(&catalog.Catalog{
		Blocklist: names("ns::Forbidden"),
		Decls:     []catalog.Decl{structDecl("ns::Forbidden", "u32")},
	})
	mustConfirm(t, c, "ns::Forbidden")
	if !c.IsConfirmedSafe(n("ns::Forbidden")) {
		t.Fatalf("struct verdict should have replaced the blocklist entry")
	}
	ows := c.Store().Overwrites()
	if len(ows) != 1 || ows[0].Before.Kind != Unsafe || ows[0].After.Kind != SafeCandidate {
		t.Fatalf("overwrites = %+v", ows)
	}
}

func TestLaterDeclarationOverwrites(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Opaque(n("T")),
		catalog.Enum(n("T")),
	})
	if !c.IsConfirmedSafe(n("T")) {
		t.Fatalf("enum declared last should win")
	}
	if got := c.Store().Names(); got[len(got)-1] != n("T") {
		t.Fatalf("overwritten name should keep its first position")
	}
}

// Requests are popped last-first: with two unsafe requests the last one is
// reported.
func TestConfirmReportsLastRequestFirst(t *testing.T) {
	c := NewChecker()
	c.IngestBlocklist(names("A"))
	c.IngestDecl(catalog.Opaque(n("B")))

	if be := confirmErr(t, c, "A", "B"); be.Type != n("B") || be.Kind != ComplexOrOpaqueAlias {
		t.Fatalf("got %v, want failure about B", be)
	}
	if be := confirmErr(t, c, "B", "A"); be.Type != n("A") || be.Kind != Blocklisted {
		t.Fatalf("got %v, want failure about A", be)
	}
}

// Field dependencies are pushed in field order, so the last field is
// examined first.
func TestConfirmExaminesLastFieldFirst(t *testing.T) {
	c := NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("X"), n("CxxString")),
		catalog.Alias(n("Y"), n("Missing")),
		structDecl("S", "X", "Y"),
	})
	be := confirmErr(t, c, "S")
	if be.Kind != DeclarationMissing || be.Type != n("Missing") {
		t.Fatalf("got %v, want missing declaration of Missing", be)
	}

	c = NewChecker()
	c.Ingest([]catalog.Decl{
		catalog.Alias(n("X"), n("CxxString")),
		catalog.Alias(n("Y"), n("Missing")),
		structDecl("S", "Y", "X"),
	})
	be = confirmErr(t, c, "S")
	if be.Type != n("X") || be.Reason.Root().Type != n("CxxString") {
		t.Fatalf("got %v, want X failing on CxxString", be)
	}
}
