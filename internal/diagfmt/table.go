package diagfmt

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"byval/internal/byvalue"
)

const (
	verdictWidth = 10
	minTypeWidth = 12
)

// Table writes one row per entry: type name, verdict and detail. Type names
// are padded by display width so wide characters keep the columns aligned.
func Table(w io.Writer, entries []byvalue.Entry, opts TableOpts) error {
	width := opts.Width
	if width <= 0 {
		width = 100
	}
	typeWidth := minTypeWidth
	for _, e := range entries {
		typeWidth = max(typeWidth, runewidth.StringWidth(e.Name.String()))
	}
	typeWidth = min(typeWidth, max(minTypeWidth, width/2))
	detailWidth := max(width-typeWidth-verdictWidth-4, 10)

	header := pad("TYPE", typeWidth) + "  " + pad("VERDICT", verdictWidth) + "  DETAIL"
	if opts.Color {
		header = lipgloss.NewStyle().Bold(true).Render(header)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, e := range entries {
		verdict := pad(e.Verdict.Kind.String(), verdictWidth)
		if opts.Color {
			verdict = styleVerdict(e.Verdict.Kind).Render(verdict)
		}
		b.WriteString(pad(truncate(e.Name.String(), typeWidth), typeWidth))
		b.WriteString("  ")
		b.WriteString(verdict)
		b.WriteString("  ")
		b.WriteString(truncate(detail(e), detailWidth))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func detail(e byvalue.Entry) string {
	switch e.Verdict.Kind {
	case byvalue.Unsafe:
		return e.Verdict.Reason.String()
	case byvalue.AliasOf:
		return "-> " + e.Verdict.Target.String()
	case byvalue.SafeCandidate:
		if len(e.Deps) == 0 {
			return ""
		}
		deps := make([]string, len(e.Deps))
		for i, d := range e.Deps {
			deps[i] = d.String()
		}
		return "needs " + strings.Join(deps, ", ")
	}
	return ""
}

func styleVerdict(k byvalue.VerdictKind) lipgloss.Style {
	switch k {
	case byvalue.Confirmed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case byvalue.Unsafe:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case byvalue.SafeCandidate:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func pad(value string, width int) string {
	return runewidth.FillRight(value, width)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
