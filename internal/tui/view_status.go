package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/splitview/internal/split"
)

// statusView paints the one-row status bar.
func (m *Model) statusView(width, _ int) string {
	opts := m.panel.Options()
	sep := m.styles.Status.Render("  ")

	// -- Left segments --
	left := []string{
		m.styles.StatusAccent.Render(" " + filepath.Base(m.lister.Root())),
	}
	layout := opts.Orientation.String()
	if opts.Reverse {
		layout += " reversed"
	}
	left = append(left, m.styles.Status.Render(layout))
	if st := m.panel.Active(); st != nil {
		seg := fmt.Sprintf("%s pane %d", split.Resizing, st.Index+1)
		if m.lastResize.Width > 0 {
			seg += fmt.Sprintf(" %d×%d", m.lastResize.Width, m.lastResize.Height)
		}
		left = append(left, m.styles.StatusAccent.Render(seg))
	}
	if m.note != "" {
		left = append(left, m.styles.Status.Render(m.note))
	}

	// -- Right segments --
	var right []string
	if m.err != nil {
		right = append(right, m.styles.Error.Render("✗ "+truncate(m.err.Error(), 30)))
	}
	if m.journal != nil {
		right = append(right, m.styles.Status.Render("journal "+strconv.Itoa(m.journalCount)))
	}
	right = append(right, m.styles.Status.Render(strconv.Itoa(m.panel.Len())+" panes "))

	l := strings.Join(left, sep)
	r := strings.Join(right, sep)
	gap := max(0, width-lipgloss.Width(l)-lipgloss.Width(r))
	return l + m.styles.Status.Render(strings.Repeat(" ", gap)) + r
}
