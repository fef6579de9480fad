package byvalue

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"byval/internal/catalog"
	"byval/internal/diag"
	"byval/internal/observ"
	"byval/internal/trace"
)

const analyzeCatalog = `
[config]
blocklist = ["ns::Forbidden"]
by_value = ["ns::Bar", "ns::Handle"]

[[decl]]
kind = "struct"
name = "ns::Foo"
fields = [{ name = "a", type = "u32" }, { name = "b", type = "i64" }]

[[decl]]
kind = "struct"
name = "ns::Bar"
fields = [{ name = "foo", type = "ns::Foo" }]

[[decl]]
kind = "alias"
name = "ns::Handle"
target = "ns::Foo"

[[decl]]
kind = "struct"
name = "ns::Forbidden"
fields = [{ name = "x", type = "u8" }]

[[decl]]
kind = "struct"
name = "ns::Text"
fields = [{ name = "s", type = "std::string" }]
`

func loadCatalog(t *testing.T, data string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse("byval.toml", []byte(data))
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	return cat
}

func TestAnalyzeCatalog(t *testing.T) {
	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText))
	timer := observ.NewTimer()
	var phases []string

	c, err := AnalyzeWithOptions(ctx, loadCatalog(t, analyzeCatalog), Options{
		Timer:   timer,
		OnPhase: func(p string) { phases = append(phases, p) },
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, name := range []string{"ns::Bar", "ns::Foo", "ns::Handle"} {
		if !c.IsConfirmedSafe(n(name)) {
			t.Fatalf("%s should be confirmed", name)
		}
	}
	if c.IsConfirmedSafe(n("ns::Forbidden")) || c.IsConfirmedSafe(n("ns::Text")) {
		t.Fatalf("unrequested or unsafe types must not be confirmed")
	}

	if got := len(timer.Report().Phases); got != 3 {
		t.Fatalf("expected 3 timed phases, got %d", got)
	}
	if strings.Join(phases, ",") != "seed,ingest,confirm" {
		t.Fatalf("phases = %v", phases)
	}
	out := buf.String()
	for _, want := range []string{"→ analyze", "struct ns::Foo -> candidate", "pop ns::Handle (alias)", "← confirm"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeReturnsCheckerOnFailure(t *testing.T) {
	cat := loadCatalog(t, analyzeCatalog)
	cat.Requests = append(cat.Requests, n("ns::Text"))
	c, err := Analyze(context.Background(), cat)
	var be *Error
	if !errors.As(err, &be) || be.Kind != DependentTypeUnsafe {
		t.Fatalf("expected DependentTypeUnsafe, got %v", err)
	}
	if c == nil || c.IsConfirmedSafe(n("ns::Text")) {
		t.Fatalf("checker should be returned and Text unconfirmed")
	}
}

func TestExplainReportsOverwritesAndUnsafeTypes(t *testing.T) {
	c, err := Analyze(context.Background(), loadCatalog(t, analyzeCatalog))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	bag := diag.NewBag(100)
	c.Explain(diag.BagReporter{Bag: bag})

	codes := make(map[diag.Code][]string)
	for _, d := range bag.Items() {
		codes[d.Code] = append(codes[d.Code], d.Subject)
	}
	if got := codes[diag.CatDuplicateDecl]; len(got) != 1 || got[0] != "ns::Forbidden" {
		t.Fatalf("overwrite warnings = %v", got)
	}
	if got := codes[diag.ByvDependentTypeUnsafe]; len(got) != 1 || got[0] != "ns::Text" {
		t.Fatalf("unsafe warnings = %v", got)
	}
	if got := codes[diag.ByvConfirmed]; len(got) != 3 {
		t.Fatalf("confirmed infos = %v", got)
	}
	if _, seeded := codes[diag.ByvNotByValueSafe]; seeded {
		t.Fatalf("known types should not be explained")
	}
}

func TestAnalyzeNilCatalog(t *testing.T) {
	if _, err := Analyze(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil catalog")
	}
}
