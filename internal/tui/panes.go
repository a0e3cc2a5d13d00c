package tui

import (
	"fmt"
	"path"
	"strings"

	"charm.land/bubbles/v2/viewport"

	"github.com/xonecas/splitview/internal/filesearch"
)

// scroller is implemented by panes that react to the mouse wheel.
type scroller interface {
	Scroll(delta int)
}

// titled stacks a title row over body, clipped to h rows.
func titled(st *Styles, title string, w, h int, body []string) string {
	if h <= 0 {
		return ""
	}
	rows := make([]string, 0, h)
	rows = append(rows, st.Title.Render(truncate(" "+title, w)))
	for _, line := range body {
		if len(rows) == h {
			break
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if r := []rune(s); len(r) > w {
		return string(r[:max(0, w-1)]) + "…"
	}
	return s
}

func clampOffset(offset, total, rows int) int {
	return max(0, min(offset, total-rows))
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

type filesPane struct {
	st      *Styles
	entries []filesearch.Entry
	cursor  int
	offset  int
	opened  string
	err     error
}

func (p *filesPane) SetEntries(entries []filesearch.Entry, err error) {
	p.entries, p.err = entries, err
	p.cursor = min(p.cursor, max(0, len(entries)-1))
}

// Move shifts the cursor by d rows.
func (p *filesPane) Move(d int) {
	if len(p.entries) == 0 {
		return
	}
	p.cursor = max(0, min(len(p.entries)-1, p.cursor+d))
}

func (p *filesPane) Scroll(d int) { p.Move(d) }

// Select moves the cursor to a visible row and reports whether it holds a
// file.
func (p *filesPane) Select(row int) bool {
	i := p.offset + row
	if row < 0 || i >= len(p.entries) {
		return false
	}
	p.cursor = i
	return true
}

func (p *filesPane) Selected() (filesearch.Entry, bool) {
	if p.cursor >= len(p.entries) {
		return filesearch.Entry{}, false
	}
	return p.entries[p.cursor], true
}

func (p *filesPane) View(w, h int) string {
	rows := h - 1
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if rows > 0 && p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}

	var body []string
	switch {
	case p.err != nil:
		body = []string{p.st.Error.Render(truncate(p.err.Error(), w))}
	case len(p.entries) == 0:
		body = []string{p.st.Muted.Render("no files")}
	}
	for i := p.offset; i < len(p.entries) && len(body) < rows; i++ {
		name := truncate(p.entries[i].Path, w)
		switch {
		case i == p.cursor:
			body = append(body, p.st.Selected.Render(name+strings.Repeat(" ", max(0, w-len([]rune(name))))))
		case p.entries[i].Path == p.opened:
			body = append(body, p.st.StatusAccent.Render(name))
		default:
			body = append(body, p.st.Text.Render(name))
		}
	}
	return titled(p.st, fmt.Sprintf("files (%d)", len(p.entries)), w, h, body)
}

// ---------------------------------------------------------------------------
// Preview
// ---------------------------------------------------------------------------

type previewPane struct {
	st   *Styles
	vp   viewport.Model
	path string
}

func newPreviewPane(st *Styles) *previewPane {
	return &previewPane{st: st, vp: viewport.New()}
}

func (p *previewPane) SetContent(name string, lines []string) {
	if name != p.path {
		p.vp.GotoTop()
	}
	p.path = name
	p.vp.SetContentLines(lines)
}

func (p *previewPane) Scroll(d int) {
	if d > 0 {
		p.vp.ScrollDown(d)
	} else {
		p.vp.ScrollUp(-d)
	}
}

func (p *previewPane) View(w, h int) string {
	if p.path == "" {
		return titled(p.st, "preview", w, h, []string{p.st.Muted.Render("enter opens the selected file")})
	}
	p.vp.SetWidth(w)
	p.vp.SetHeight(max(0, h-1))
	title := fmt.Sprintf("%s  %d%%", path.Base(p.path), int(p.vp.ScrollPercent()*100))
	return titled(p.st, title, w, h, strings.Split(p.vp.View(), "\n"))
}

// ---------------------------------------------------------------------------
// Outline and changes
// ---------------------------------------------------------------------------

// listPane shows pre-rendered lines under a title.
type listPane struct {
	st     *Styles
	title  string
	empty  string
	lines  []string
	offset int
	height int
}

func (p *listPane) SetLines(lines []string) {
	p.lines = lines
	p.offset = 0
}

func (p *listPane) Scroll(d int) {
	p.offset = clampOffset(p.offset+d, len(p.lines), p.height-1)
}

func (p *listPane) View(w, h int) string {
	p.height = h
	p.offset = clampOffset(p.offset, len(p.lines), h-1)
	if len(p.lines) == 0 {
		return titled(p.st, p.title, w, h, []string{p.st.Muted.Render(p.empty)})
	}
	return titled(p.st, p.title, w, h, p.lines[p.offset:])
}

// scratchPane is an empty pane that reports its own size.
type scratchPane struct {
	st *Styles
	n  int
}

func (p scratchPane) View(w, h int) string {
	return titled(p.st, fmt.Sprintf("scratch %d", p.n), w, h, []string{
		p.st.Muted.Render(fmt.Sprintf("%d×%d", w, h)),
	})
}
