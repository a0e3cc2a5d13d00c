package tui

import (
	tea "charm.land/bubbletea/v2"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View returns the frame painted by the last settle.
func (m *Model) View() tea.View {
	v := tea.NewView(m.frame)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.ReportFocus = true
	return v
}
