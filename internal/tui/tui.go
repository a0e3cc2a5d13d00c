// Package tui is the terminal application around the split panel: it hosts
// the document the panel renders into, feeds it mouse input and paints the
// result.
package tui

import (
	"context"
	"errors"
	"image"
	"io"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/splitview/internal/async"
	"github.com/xonecas/splitview/internal/filesearch"
	"github.com/xonecas/splitview/internal/highlight"
	"github.com/xonecas/splitview/internal/split"
	"github.com/xonecas/splitview/internal/store"
	"github.com/xonecas/splitview/internal/term"
)

// maxSettle bounds the render/drain rounds after one update.
const maxSettle = 8

// Options configure the application model.
type Options struct {
	Lister   *filesearch.Lister
	Renderer *highlight.Renderer
	// Journal may be nil to disable resize recording.
	Journal *store.Journal
	Panel   split.Options
}

// openFile is the file shown in the preview.
type openFile struct {
	path string
	abs  string
	base string // content when first opened
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	frame         string

	doc    *term.Document
	queue  *async.Queue
	panel  *split.Panel
	styles *Styles

	lister   *filesearch.Lister
	renderer *highlight.Renderer
	journal  *store.Journal
	watcher  *fsnotify.Watcher
	watching string

	files   *filesPane
	preview *previewPane
	outline *listPane
	changes *listPane
	scratch int
	open    *openFile

	lastResize   store.Resize
	journalCount int
	note         string

	pending []tea.Cmd
	err     error
}

// New builds the model. The panel gets four panes: files, preview, outline
// and changes.
func New(opts Options) (*Model, error) {
	if opts.Lister == nil || opts.Renderer == nil {
		return nil, errors.New("tui: lister and renderer are required")
	}
	st := NewStyles(opts.Renderer.Theme())
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:      ctx,
		cancel:   cancel,
		doc:      term.NewDocument(),
		queue:    async.NewQueue(),
		styles:   &st,
		lister:   opts.Lister,
		renderer: opts.Renderer,
		journal:  opts.Journal,
		files:    &filesPane{st: &st},
		preview:  newPreviewPane(&st),
		outline:  &listPane{st: &st, title: "outline", empty: "no symbols"},
		changes:  &listPane{st: &st, title: "changes", empty: "no changes since open"},
	}

	popts := opts.Panel
	if popts.Styles == nil {
		popts.Styles = st.Panel
	}
	popts.OnResize = m.onResize
	popts.OnResizeFinished = m.onResizeFinished
	popts.OnReset = func() { m.note = "size reset" }
	panel, err := split.New(m.doc, m.queue, m.panes(), popts)
	if err != nil {
		cancel()
		return nil, err
	}
	m.panel = panel

	if _, err := m.doc.AddEventListener(term.EventPointerDown, m.onPointerDown); err != nil {
		cancel()
		return nil, err
	}

	if w, err := fsnotify.NewWatcher(); err != nil {
		log.Warn().Err(err).Msg("file watcher unavailable, previews will not reload")
	} else {
		m.watcher = w
	}
	return m, nil
}

// Init lists the files and starts the background waiters.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listCmd(), m.waitQueue(), m.watchCmd(), m.journalCountCmd())
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error { return m.err }

// Close releases the panel's global resources and stops the watcher.
func (m *Model) Close() error {
	m.cancel()
	err := m.panel.Close()
	if m.watcher != nil {
		err = errors.Join(err, m.watcher.Close())
	}
	return err
}

// FlushCursor writes a pointer shape change still pending after the
// program stopped, such as the one Close leaves when a drag was live.
func (m *Model) FlushCursor(w io.Writer) error {
	seq, ok := m.doc.TakeCursorChange()
	if !ok {
		return nil
	}
	_, err := io.WriteString(w, seq)
	return err
}

// cursorCmd writes the pending pointer shape change, if any.
func (m *Model) cursorCmd() tea.Cmd {
	if seq, ok := m.doc.TakeCursorChange(); ok {
		return tea.Raw(seq)
	}
	return nil
}

// quit restores the pointer shape before the program stops.
func (m *Model) quit() tea.Cmd {
	return tea.Sequence(m.cursorCmd(), tea.Quit)
}

// fail records a fatal widget error, releases the panel and quits.
func (m *Model) fail(err error) tea.Cmd {
	log.Error().Err(err).Msg("unrecoverable widget error")
	if m.err == nil {
		m.err = err
	}
	if cerr := m.panel.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("panel release failed")
	}
	return m.quit()
}

func (m *Model) panes() []term.Content {
	panes := []term.Content{m.files, m.preview, m.outline, m.changes}
	for i := range m.scratch {
		panes = append(panes, scratchPane{st: m.styles, n: i + 1})
	}
	return panes
}

// ---------------------------------------------------------------------------
// Panel callbacks
// ---------------------------------------------------------------------------

func (m *Model) onResize(width, height int) {
	st := m.panel.Active()
	if st == nil {
		return
	}
	m.lastResize = store.Resize{
		PanelID: m.panel.Options().ID,
		Pane:    st.Index,
		Width:   width,
		Height:  height,
	}
}

func (m *Model) onResizeFinished() {
	if m.lastResize.Width == 0 && m.lastResize.Height == 0 {
		return
	}
	log.Debug().Int("pane", m.lastResize.Pane).Int("width", m.lastResize.Width).
		Int("height", m.lastResize.Height).Msg("resize finished")
	m.journal.Record(m.lastResize)
	m.lastResize = store.Resize{}
	m.pending = append(m.pending, m.journalCountCmd())
}

// onPointerDown selects and opens the file under a click in the files pane.
func (m *Model) onPointerDown(ev *term.Event) error {
	t := ev.Target
	if !ev.Primary || t == nil || t.Key != "child-0" {
		return nil
	}
	if m.files.Select(ev.Y - t.Bounds().Min.Y - 1) {
		m.pending = append(m.pending, m.openSelected())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Render loop
// ---------------------------------------------------------------------------

// layout is the whole screen: the panel above a one-row status bar.
func (m *Model) layout() *term.Node {
	body := m.panel.Render()
	if opts := m.panel.Options(); opts.NoWrap {
		body = term.Box(body)
		body.Key = "body"
		body.Axis = opts.Orientation.Axis()
	}
	status := term.Leaf(term.ContentFunc(m.statusView))
	status.Key = "status"
	status.Fixed = 1

	root := term.Box(body, status)
	root.Axis = term.AxisVertical
	return root
}

func (m *Model) render() error {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	if err := m.doc.Mount(m.layout(), image.Rect(0, 0, m.width, m.height)); err != nil {
		return err
	}
	m.panel.Rendered()
	m.frame = m.doc.Paint()
	return nil
}

// settle renders, runs what the render queued, and repeats until the queue
// is quiet. It returns cmds plus whatever the callbacks asked for.
func (m *Model) settle(cmds ...tea.Cmd) tea.Cmd {
	if m.err == nil {
		for range maxSettle {
			if err := m.render(); err != nil {
				return m.fail(err)
			}
			if m.queue.Drain() == 0 {
				break
			}
		}
		if err := m.panel.TakeErr(); err != nil {
			return m.fail(err)
		}
	}
	if seq, ok := m.doc.TakeCursorChange(); ok {
		cmds = append(cmds, tea.Raw(seq))
	}
	cmds = append(cmds, m.pending...)
	m.pending = nil
	return tea.Batch(cmds...)
}

// waitQueue wakes the loop when another goroutine posts to the queue.
func (m *Model) waitQueue() tea.Cmd {
	q, ctx := m.queue, m.ctx
	return func() tea.Msg {
		select {
		case <-q.Ready():
			return flushMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) journalCountCmd() tea.Cmd {
	j := m.journal
	if j == nil {
		return nil
	}
	return func() tea.Msg {
		j.Flush()
		n, err := j.Count()
		return journalMsg{count: n, err: err}
	}
}

func (m *Model) resetCmd(i int) tea.Cmd {
	if i >= m.panel.Len() {
		m.note = "no pane " + strconv.Itoa(i+1)
		return nil
	}
	rcv := m.panel.ResetAsync(i)
	ctx := m.ctx
	return func() tea.Msg {
		_, err := rcv.Await(ctx)
		return resetDoneMsg{index: i, err: err}
	}
}
