package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"byval/internal/diag"
)

type palette struct {
	err, warn, info, code, subject, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan),
		code:    color.New(color.Faint),
		subject: color.New(color.Bold),
		note:    color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.subject, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes the diagnostics of bag in a human-readable form.
// Expects bag.Sort() to have been called. For each diagnostic it prints
//
//	<subject>: <SEV> <CODE>: <message>
//
// followed by its notes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevInfo && !opts.ShowInfo {
			continue
		}
		subject := d.Subject
		if opts.Width > 0 {
			subject = truncate(subject, opts.Width)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.subject.Sprint(subject),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), n.Subject, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary writes a one-line count of errors and warnings.
func Summary(w io.Writer, bag *diag.Bag, useColor bool) error {
	p := newPalette(useColor)
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	_, err := fmt.Fprintf(w, "%s, %s\n",
		p.err.Sprint(plural(errs, "error")),
		p.warn.Sprint(plural(warns, "warning")))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
