package diag

import "testing"

func TestBagRespectsLimit(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}
	ReportWarning(r, ByvBlocklisted, "ns::A", "first").Emit()
	ReportError(r, ByvDeclarationMissing, "ns::B", "second").Emit()
	ReportInfo(r, ByvConfirmed, "ns::C", "dropped").Emit()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", b.Len())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected both errors and warnings")
	}
}

func TestBagSortPutsErrorsFirst(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevInfo, ByvConfirmed, "a", "ok"))
	b.Add(NewError(ByvDependentTypeUnsafe, "z", "bad"))
	b.Add(New(SevWarning, CatDuplicateDecl, "m", "overwritten"))
	b.Sort()
	got := []Severity{b.Items()[0].Severity, b.Items()[1].Severity, b.Items()[2].Severity}
	want := []Severity{SevError, SevWarning, SevInfo}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted severities = %v, want %v", got, want)
		}
	}
}

func TestNewBagClampsLimit(t *testing.T) {
	if NewBag(-1).Cap() != 0 {
		t.Fatalf("negative limit should clamp to 0")
	}
	if NewBag(1<<20).Cap() != ^uint16(0) {
		t.Fatalf("huge limit should clamp to max uint16")
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	b := NewBag(10)
	rb := ReportError(BagReporter{Bag: b}, ByvAliasCycle, "ns::A", "cycle").WithNote("ns::B", "points back")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("builder emitted %d times", b.Len())
	}
	if len(b.Items()[0].Notes) != 1 || b.Items()[0].Notes[0].Subject != "ns::B" {
		t.Fatalf("note not carried: %+v", b.Items()[0])
	}
}

func TestCodeID(t *testing.T) {
	if ByvBlocklisted.ID() != "BYV2004" {
		t.Fatalf("unexpected id %s", ByvBlocklisted.ID())
	}
	if CatParseError.ID() != "CAT1001" {
		t.Fatalf("unexpected id %s", CatParseError.ID())
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatalf("unknown code should fall back")
	}
}
