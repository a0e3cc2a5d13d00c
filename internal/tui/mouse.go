package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/splitview/internal/split"
)

// ---------------------------------------------------------------------------
// Mouse filter: throttle high-frequency events at program level.
// ---------------------------------------------------------------------------

var lastMouseEvent time.Time

// MouseEventFilter rate-limits wheel and motion events (15 ms). Pass to
// tea.WithFilter. Clicks and releases always pass, and so does motion with
// a button held or while a divider is being dragged.
func MouseEventFilter(model tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseMotionMsg:
		if m, ok := model.(*Model); ok && (m.doc.Pressed() || m.panel.State() == split.Resizing) {
			return msg
		}
	case tea.MouseWheelMsg:
	default:
		return msg
	}
	now := time.Now()
	if now.Sub(lastMouseEvent) < 15*time.Millisecond {
		return nil
	}
	lastMouseEvent = now
	return msg
}
