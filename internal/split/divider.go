package split

import (
	"strconv"
	"strings"

	"github.com/xonecas/splitview/internal/resize"
	"github.com/xonecas/splitview/internal/term"
)

// divider builds the drag handle between pane i and pane i+1.
func (p *Panel) divider(i int) *term.Node {
	n := &term.Node{
		Key:     "divider-" + strconv.Itoa(i),
		Classes: []string{"split-panel-divider"},
		Fixed:   1,
		Content: dividerView{
			orientation: p.opts.Orientation,
			active:      p.activeDivider(i),
			styles:      p.styles(),
		},
	}

	n.On(term.EventPointerDown, func(ev *term.Event) error {
		if !ev.Primary {
			return nil
		}
		_, err := p.Dispatch(StartResizing{
			Index:     i,
			Coord:     p.opts.Orientation.Coord(ev.X, ev.Y),
			PointerID: ev.PointerID,
			Target:    ev.Target,
		})
		return err
	})
	n.On(term.EventDblClick, func(ev *term.Event) error {
		ev.PreventDefault()
		ev.StopPropagation()
		_, err := p.Dispatch(Reset{Index: i})
		return err
	})
	// An unprevented drag start hands the pointer to the host's native drag
	// and the panel never sees the moves or the release.
	n.On(term.EventDragStart, func(ev *term.Event) error {
		ev.PreventDefault()
		return nil
	})
	n.On(term.EventLostPointerCapture, func(*term.Event) error {
		_, err := p.Dispatch(StopResizing{})
		return err
	})
	return n
}

func (p *Panel) activeDivider(i int) bool {
	st := p.slot.Active()
	return st != nil && st.Index == i
}

func (p *Panel) styles() *Styles {
	if p.opts.Styles != nil {
		return p.opts.Styles
	}
	return DefaultStyles()
}

type dividerView struct {
	orientation resize.Orientation
	active      bool
	styles      *Styles
}

func (d dividerView) View(width, height int) string {
	style := d.styles.Divider
	if d.active {
		style = d.styles.Active
	}
	if d.orientation == resize.Vertical {
		return style.Render(strings.Repeat("─", width))
	}
	lines := make([]string, height)
	for y := range lines {
		lines[y] = style.Render("│")
	}
	return strings.Join(lines, "\n")
}
