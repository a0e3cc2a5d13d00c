package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/splitview/internal/highlight"
	"github.com/xonecas/splitview/internal/split"
)

// Styles holds every style the UI paints with, derived from one palette so
// the chrome matches the syntax theme.
type Styles struct {
	Bg string

	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Status       lipgloss.Style
	StatusAccent lipgloss.Style
	Error        lipgloss.Style

	DiffAdd  lipgloss.Style
	DiffDel  lipgloss.Style
	DiffHunk lipgloss.Style

	Panel *split.Styles
}

// NewStyles builds the styles for theme.
func NewStyles(theme string) Styles {
	p := highlight.ThemePalette(theme)
	bg := lipgloss.Color(p.Bg)
	base := lipgloss.NewStyle().Background(bg)
	return Styles{
		Bg:           p.Bg,
		Title:        base.Foreground(lipgloss.Color(p.Accent)).Bold(true),
		Text:         base.Foreground(lipgloss.Color(p.Fg)),
		Muted:        base.Foreground(lipgloss.Color(p.Muted)),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color(p.Border)).Foreground(lipgloss.Color(p.Fg)).Bold(true),
		Status:       base.Foreground(lipgloss.Color(p.Dim)),
		StatusAccent: base.Foreground(lipgloss.Color(p.Accent)),
		Error:        base.Foreground(lipgloss.Color(p.Error)).Bold(true),
		DiffAdd:      base.Foreground(lipgloss.Color("#5faf5f")),
		DiffDel:      base.Foreground(lipgloss.Color("#d75f5f")),
		DiffHunk:     base.Foreground(lipgloss.Color(p.Muted)),
		Panel:        split.NewStyles(lipgloss.Color(p.Border), lipgloss.Color(p.Accent)),
	}
}
