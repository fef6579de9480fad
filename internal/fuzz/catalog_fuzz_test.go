package fuzztests

import (
	"context"
	"testing"
	"time"

	"byval/internal/byvalue"
	"byval/internal/catalog"
)

// analyzeTimeout bounds one analysis; exceeding it means resolution looped.
const analyzeTimeout = 5 * time.Second

func FuzzCatalogAnalyze(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxFuzzInput)

		cat, err := catalog.Parse("fuzz.toml", input)
		if err != nil {
			return
		}

		type outcome struct {
			c   *byvalue.Checker
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			c, err := byvalue.Analyze(context.Background(), cat)
			done <- outcome{c, err}
		}()

		select {
		case res := <-done:
			if res.c == nil {
				t.Fatalf("Analyze returned no checker")
			}
			if res.err != nil {
				return
			}
			for _, req := range cat.Requests {
				if !res.c.IsConfirmedSafe(req) {
					t.Fatalf("Confirm succeeded but %s is not confirmed", req)
				}
			}
		case <-time.After(analyzeTimeout):
			t.Fatalf("Analyze did not finish within %s", analyzeTimeout)
		}
	})
}

func FuzzCatalogParse(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		cat, err := catalog.Parse("fuzz.toml", clamp(input, maxFuzzInput))
		if err != nil {
			return
		}
		for _, d := range cat.Decls {
			if d.Name.IsZero() {
				t.Fatalf("accepted a declaration without a name")
			}
			if d.Kind != catalog.DeclStruct && len(d.Fields) > 0 {
				t.Fatalf("%s %s carries fields", d.Kind, d.Name)
			}
		}
	})
}
