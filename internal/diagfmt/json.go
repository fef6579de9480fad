package diagfmt

import (
	"encoding/json"
	"io"

	"byval/internal/diag"
)

// NoteJSON is one note in JSON output.
type NoteJSON struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Subject  string     `json:"subject"`
	Message  string     `json:"message"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Catalog     string           `json:"catalog,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// BuildDiagnosticsOutput assembles the JSON structure without serializing it.
func BuildDiagnosticsOutput(catalogPath string, bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0, bag.Len())
	for _, d := range bag.Items() {
		if opts.Max > 0 && len(diagnostics) == opts.Max {
			break
		}
		if d.Severity == diag.SevInfo && !opts.IncludeInfo {
			continue
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Subject:  d.Subject,
			Message:  d.Message,
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for i, n := range d.Notes {
				dj.Notes[i] = NoteJSON{Subject: n.Subject, Message: n.Msg}
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{
		Catalog:     catalogPath,
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes the diagnostics of bag as one indented JSON document.
func JSON(w io.Writer, catalogPath string, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(catalogPath, bag, opts))
}
