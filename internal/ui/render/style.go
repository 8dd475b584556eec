// Package render prints store reports for humans and machines.
package render

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Plus    = "+"
	Minus   = "-"
	Dot     = "●"
)

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	label lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().Bold(true).Foreground(Iris),
		ok:    r.NewStyle().Foreground(Green),
		fail:  r.NewStyle().Foreground(Red),
		warn:  r.NewStyle().Foreground(Yellow),
		muted: r.NewStyle().Foreground(Slate),
		label: r.NewStyle().Width(12),
	}
}
