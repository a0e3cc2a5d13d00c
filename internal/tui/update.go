package tui

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/splitview/internal/async"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

// Update applies msg, then re-renders and drains the queue until the panel
// settles.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		return m, tea.Quit
	}
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		cmd, err := m.handleKeyPress(msg)
		if err != nil {
			return m, m.fail(err)
		}
		cmds = append(cmds, cmd)

	// -- Mouse ---------------------------------------------------------------
	case tea.MouseWheelMsg:
		m.handleWheel(msg)
	case tea.MouseMsg:
		if err := m.doc.HandleMouse(msg); err != nil {
			return m, m.fail(err)
		}

	// -- Focus ---------------------------------------------------------------
	case tea.BlurMsg:
		// The release may never arrive once the terminal loses focus.
		if err := m.doc.Blur(); err != nil {
			return m, m.fail(err)
		}

	// -- Background work -----------------------------------------------------
	case flushMsg:
		cmds = append(cmds, m.waitQueue())
	case filesListedMsg:
		m.files.SetEntries(msg.entries, msg.err)
	case fileOpenedMsg:
		m.handleFileOpened(msg)
	case fileChangedMsg:
		if m.open != nil && msg.abs == m.open.abs {
			cmds = append(cmds, m.openCmd(m.open.path, true))
		}
		cmds = append(cmds, m.watchCmd())
	case journalMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("journal count failed")
		} else {
			m.journalCount = msg.count
		}
	case resetDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, async.ErrCanceled) {
			log.Warn().Err(msg.err).Int("pane", msg.index).Msg("reset did not complete")
		} else if msg.err == nil {
			m.note = fmt.Sprintf("pane %d reset", msg.index+1)
		}
	}

	return m, m.settle(cmds...)
}

// handleWheel scrolls the pane under the pointer.
func (m *Model) handleWheel(msg tea.MouseWheelMsg) {
	mouse := msg.Mouse()
	n := m.doc.HitTest(mouse.X, mouse.Y)
	for n != nil && !n.HasClass("split-panel-child") {
		n = n.Parent()
	}
	if n == nil {
		return
	}
	var i int
	if _, err := fmt.Sscanf(n.Key, "child-%d", &i); err != nil {
		return
	}
	panes := m.panes()
	if i >= len(panes) {
		return
	}
	s, ok := panes[i].(scroller)
	if !ok {
		return
	}
	switch mouse.Button {
	case tea.MouseWheelUp:
		s.Scroll(-3)
	case tea.MouseWheelDown:
		s.Scroll(3)
	}
}
