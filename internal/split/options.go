package split

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/splitview/internal/resize"
)

// Options configure a Panel. Callbacks are optional.
type Options struct {
	ID          string
	Orientation resize.Orientation
	// NoWrap renders the panes and dividers without an enclosing box so they
	// can be spliced into a larger layout.
	NoWrap  bool
	Reverse bool

	// OnReset runs once after the render that follows a Reset.
	OnReset func()
	// OnResize runs for every processed move with the dragged pane's size.
	OnResize func(width, height int)
	// OnResizeFinished runs once when a drag ends.
	OnResizeFinished func()

	Styles *Styles
}

// Styles paint the dividers.
type Styles struct {
	Divider lipgloss.Style
	Active  lipgloss.Style
}

// NewStyles builds divider styles from a border and an accent colour.
func NewStyles(border, accent color.Color) *Styles {
	return &Styles{
		Divider: lipgloss.NewStyle().Foreground(border),
		Active:  lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

// DefaultStyles are used when Options.Styles is nil.
func DefaultStyles() *Styles {
	return NewStyles(lipgloss.Color("#3a3a3a"), lipgloss.Color("#e8a84f"))
}
