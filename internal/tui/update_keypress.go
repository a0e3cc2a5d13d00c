package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/splitview/internal/resize"
)

// handleKeyPress runs the binding for msg. An error is fatal.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Cmd, error) {
	key := msg.String()
	if key >= "1" && key <= "9" && len(key) == 1 {
		return m.resetCmd(int(key[0] - '1')), nil
	}
	handler := m.keyPressHandlers()[key]
	if handler == nil {
		return nil, nil
	}
	return handler(m)
}

func (m *Model) keyPressHandlers() map[string]func(*Model) (tea.Cmd, error) {
	return map[string]func(*Model) (tea.Cmd, error){
		"q":      (*Model).handleQuit,
		"ctrl+c": (*Model).handleQuit,
		"o":      (*Model).handleToggleOrientation,
		"r":      (*Model).handleToggleReverse,
		"+":      (*Model).handleAddPane,
		"-":      (*Model).handleRemovePane,
		"j":      func(m *Model) (tea.Cmd, error) { m.files.Move(1); return nil, nil },
		"down":   func(m *Model) (tea.Cmd, error) { m.files.Move(1); return nil, nil },
		"k":      func(m *Model) (tea.Cmd, error) { m.files.Move(-1); return nil, nil },
		"up":     func(m *Model) (tea.Cmd, error) { m.files.Move(-1); return nil, nil },
		"pgdown": func(m *Model) (tea.Cmd, error) { m.preview.Scroll(10); return nil, nil },
		"pgup":   func(m *Model) (tea.Cmd, error) { m.preview.Scroll(-10); return nil, nil },
		"enter":  func(m *Model) (tea.Cmd, error) { return m.openSelected(), nil },
	}
}

func (m *Model) handleQuit() (tea.Cmd, error) {
	if err := m.panel.Close(); err != nil {
		return nil, err
	}
	return m.quit(), nil
}

func (m *Model) handleToggleOrientation() (tea.Cmd, error) {
	opts := m.panel.Options()
	if opts.Orientation == resize.Horizontal {
		opts.Orientation = resize.Vertical
	} else {
		opts.Orientation = resize.Horizontal
	}
	m.panel.SetOptions(opts)
	m.note = opts.Orientation.String()
	return nil, nil
}

func (m *Model) handleToggleReverse() (tea.Cmd, error) {
	opts := m.panel.Options()
	opts.Reverse = !opts.Reverse
	m.panel.SetOptions(opts)
	return nil, nil
}

func (m *Model) handleAddPane() (tea.Cmd, error) {
	m.scratch++
	return nil, m.panel.SetPanes(m.panes())
}

func (m *Model) handleRemovePane() (tea.Cmd, error) {
	if m.scratch == 0 {
		return nil, nil
	}
	m.scratch--
	return nil, m.panel.SetPanes(m.panes())
}
