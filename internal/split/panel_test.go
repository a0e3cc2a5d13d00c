package split

import (
	"errors"
	"image"
	"strconv"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/splitview/internal/async"
	"github.com/xonecas/splitview/internal/resize"
	"github.com/xonecas/splitview/internal/term"
)

// countingHost wraps a document and tracks how much of it is held.
type countingHost struct {
	*term.Document
	live, maxLive int

	failUp      error
	failRestore error
}

func (h *countingHost) AddEventListener(t term.EventType, fn term.Handler) (term.ListenerID, error) {
	if t == term.EventPointerUp && h.failUp != nil {
		return 0, h.failUp
	}
	id, err := h.Document.AddEventListener(t, fn)
	if err == nil {
		h.live++
		h.maxLive = max(h.maxLive, h.live)
	}
	return id, err
}

func (h *countingHost) RemoveEventListener(t term.EventType, id term.ListenerID) error {
	err := h.Document.RemoveEventListener(t, id)
	if err == nil {
		h.live--
	}
	return err
}

func (h *countingHost) SetCursor(v string) error {
	if v == "" && h.failRestore != nil {
		return h.failRestore
	}
	return h.Document.SetCursor(v)
}

type fixture struct {
	t     *testing.T
	doc   *term.Document
	host  *countingHost
	queue *async.Queue
	panel *Panel
	rect  image.Rectangle
}

func newFixture(t *testing.T, n int, opts Options) *fixture {
	t.Helper()
	doc := term.NewDocument()
	f := &fixture{
		t:     t,
		doc:   doc,
		host:  &countingHost{Document: doc},
		queue: async.NewQueue(),
		rect:  image.Rect(0, 0, 21, 5),
	}
	p, err := New(f.host, f.queue, panes(n), opts)
	require.NoError(t, err)
	f.panel = p
	f.render()
	return f
}

func panes(n int) []term.Content {
	out := make([]term.Content, n)
	for i := range out {
		out[i] = term.ContentFunc(func(int, int) string { return "" })
	}
	return out
}

// render mounts the panel the way the UI loop does after every update.
func (f *fixture) render() {
	f.t.Helper()
	require.NoError(f.t, f.doc.Mount(f.panel.Render(), f.rect))
	f.panel.Rendered()
}

func (f *fixture) mouse(msg tea.MouseMsg) {
	f.t.Helper()
	require.NoError(f.t, f.doc.HandleMouse(msg))
}

func (f *fixture) divider(i int) *term.Node {
	return f.doc.Root().Find(func(n *term.Node) bool { return n.Key == "divider-"+strconv.Itoa(i) })
}

func click(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

// ---------------------------------------------------------------------------
// Construction and render
// ---------------------------------------------------------------------------

func TestNewRejectsEmptyPanes(t *testing.T) {
	_, err := New(term.NewDocument(), async.NewQueue(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoPanes)
}

func TestDividerCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		p, err := New(term.NewDocument(), async.NewQueue(), panes(n), Options{})
		require.NoError(t, err)
		root := p.Render()
		dividers := root.FindAll(func(x *term.Node) bool { return x.HasClass("split-panel-divider") })
		children := root.FindAll(func(x *term.Node) bool { return x.HasClass("split-panel-child") })
		assert.Len(t, dividers, n-1)
		assert.Len(t, children, n)
	}
}

func TestRenderOrderAndClasses(t *testing.T) {
	p, err := New(term.NewDocument(), async.NewQueue(), panes(3), Options{
		ID:          "main",
		Orientation: resize.Vertical,
		Reverse:     true,
	})
	require.NoError(t, err)

	root := p.Render()
	assert.Equal(t, "main", root.ID)
	assert.Equal(t, []string{"split-panel", "orient-vertical", "orient-reverse"}, root.Classes)
	assert.Equal(t, term.AxisVertical, root.Axis)
	assert.True(t, root.Reverse)

	var keys []string
	for _, c := range root.Children {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"child-0", "divider-0", "child-1", "divider-1", "child-2"}, keys)

	p.SetOptions(Options{NoWrap: true})
	frag := p.Render()
	assert.True(t, frag.IsFragment())
	assert.Len(t, frag.Children, 5)
}

func TestPaint(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.rect = image.Rect(0, 0, 5, 1)
	f.render()
	assert.Equal(t, "  │  ", ansi.Strip(f.doc.Paint()))
}

func TestOverrideLengthLaw(t *testing.T) {
	f := newFixture(t, 3, Options{})
	f.mouse(click(7, 2))
	f.mouse(motion(9, 2))
	f.mouse(release(9, 2))
	require.NotNil(t, f.panel.Override(0))

	for _, n := range []int{5, 1, 4, 2, 2, 7} {
		require.NoError(t, f.panel.SetPanes(panes(n)))
		assert.Len(t, f.panel.Overrides(), n)
		assert.Equal(t, n, f.panel.Len())
		assert.NotNil(t, f.panel.Override(0), "pane 0 keeps its override")
		for i := 1; i < n; i++ {
			assert.Nil(t, f.panel.Override(i))
		}
		f.render()
	}

	assert.ErrorIs(t, f.panel.SetPanes(nil), ErrNoPanes)
	assert.Len(t, f.panel.Overrides(), 7)
}

// ---------------------------------------------------------------------------
// Dragging
// ---------------------------------------------------------------------------

func TestDragResizesPane(t *testing.T) {
	var sizes [][2]int
	finished := 0
	f := newFixture(t, 2, Options{
		OnResize:         func(w, h int) { sizes = append(sizes, [2]int{w, h}) },
		OnResizeFinished: func() { finished++ },
	})

	// Two flexible panes share 20 cells; the divider sits at x=10.
	f.mouse(click(10, 2))
	assert.Equal(t, Resizing, f.panel.State())
	assert.Equal(t, "col-resize", f.doc.Cursor())
	assert.True(t, f.doc.HasPointerCapture(f.divider(0), term.MousePointerID))

	f.mouse(motion(14, 2))
	f.render()
	f.mouse(motion(15, 0))
	f.render()
	assert.Equal(t, [][2]int{{14, 5}, {15, 5}}, sizes)
	assert.Equal(t, "max-width:15px;min-width:15px;width:15px", f.panel.Style(0))
	w, _, ok := f.panel.Ref(0).Size()
	require.True(t, ok)
	assert.Equal(t, 15, w)
	assert.True(t, f.doc.Root().Children[0].HasClass("is-width-override"))

	f.mouse(release(15, 0))
	assert.Equal(t, Idle, f.panel.State())
	assert.Equal(t, 0, finished, "finished is delivered through the queue")
	f.queue.Drain()
	assert.Equal(t, 1, finished)

	assert.Equal(t, 0, f.host.live)
	assert.Equal(t, "", f.doc.Cursor())
	assert.Nil(t, f.doc.CaptureHolder(term.MousePointerID))

	// Nothing is left listening.
	f.mouse(motion(3, 1))
	f.mouse(release(3, 1))
	assert.Len(t, sizes, 2)
	f.queue.Drain()
	assert.Equal(t, 1, finished)
	assert.Equal(t, 15, f.panel.Override(0).Size)
}

func TestDragVertical(t *testing.T) {
	var sizes [][2]int
	f := newFixture(t, 2, Options{
		Orientation: resize.Vertical,
		OnResize:    func(w, h int) { sizes = append(sizes, [2]int{w, h}) },
	})
	f.rect = image.Rect(0, 0, 10, 11)
	f.render()

	f.mouse(click(3, 5))
	assert.Equal(t, "row-resize", f.doc.Cursor())
	f.mouse(motion(3, 8))
	assert.Equal(t, [][2]int{{10, 8}}, sizes)
	assert.Equal(t, "max-height:8px;min-height:8px;height:8px", f.panel.Style(0))
}

func TestDragReverse(t *testing.T) {
	var sizes [][2]int
	f := newFixture(t, 2, Options{
		Reverse:  true,
		OnResize: func(w, h int) { sizes = append(sizes, [2]int{w, h}) },
	})

	// Pane 0 sits on the right; dragging left grows it.
	require.Equal(t, image.Rect(11, 0, 21, 5), f.panel.Ref(0).Node().Bounds())
	f.mouse(click(10, 2))
	f.mouse(motion(6, 2))
	assert.Equal(t, [][2]int{{14, 5}}, sizes)
}

func TestMoveAndStopInIdleAreNoops(t *testing.T) {
	resized, finished := 0, 0
	f := newFixture(t, 2, Options{
		OnResize:         func(int, int) { resized++ },
		OnResizeFinished: func() { finished++ },
	})

	changed, err := f.panel.Dispatch(MoveResizing{Coord: 40})
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = f.panel.Dispatch(StopResizing{})
	require.NoError(t, err)
	assert.False(t, changed)

	f.queue.Drain()
	assert.Zero(t, resized)
	assert.Zero(t, finished)
	assert.Nil(t, f.panel.Override(0))
}

func TestStartRejectsBadIndex(t *testing.T) {
	f := newFixture(t, 2, Options{})
	_, err := f.panel.Dispatch(StartResizing{Index: 5, PointerID: term.MousePointerID, Target: f.divider(0)})
	assert.ErrorIs(t, err, ErrPaneIndex)
	assert.Equal(t, Idle, f.panel.State())
}

func TestAttachRaceAbortsQuietly(t *testing.T) {
	doc := term.NewDocument()
	p, err := New(doc, async.NewQueue(), panes(2), Options{})
	require.NoError(t, err)

	changed, err := p.Dispatch(StartResizing{Index: 0, Coord: 3, PointerID: term.MousePointerID, Target: &term.Node{}})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, 0, doc.ListenerCount(term.EventPointerMove))
	assert.Equal(t, "", doc.Cursor())
}

func TestAcquisitionFailureRollsBack(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.host.failUp = errors.New("registry full")

	f.mouse(click(10, 2))
	assert.Equal(t, Idle, f.panel.State())
	assert.Equal(t, 0, f.host.live)
	assert.Equal(t, "", f.doc.Cursor())
	assert.Nil(t, f.doc.CaptureHolder(term.MousePointerID))
}

func TestReleaseFailureIsSurfaced(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(click(10, 2))
	require.Equal(t, Resizing, f.panel.State())

	stuck := errors.New("cursor stuck")
	f.host.failRestore = stuck
	changed, err := f.panel.Dispatch(StopResizing{})
	assert.True(t, changed)
	assert.ErrorIs(t, err, stuck)

	assert.Equal(t, Idle, f.panel.State())
	assert.Equal(t, 0, f.host.live, "listeners are removed even though the cursor was not restored")
	assert.Nil(t, f.doc.CaptureHolder(term.MousePointerID))
}

func TestSecondStartReplacesFirst(t *testing.T) {
	f := newFixture(t, 3, Options{})

	// Three panes over 21 cells: 7, 6 and 6 wide with dividers at 7 and 14.
	f.mouse(click(7, 2))
	first := f.panel.Active()
	require.NotNil(t, first)

	changed, err := f.panel.Dispatch(StartResizing{
		Index:     1,
		Coord:     14,
		PointerID: term.MousePointerID,
		Target:    f.divider(1),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	second := f.panel.Active()
	require.NotNil(t, second)
	assert.True(t, first.Released())
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 2, f.host.maxLive, "never more than one drag's listeners")
	assert.True(t, f.doc.HasPointerCapture(f.divider(1), term.MousePointerID))
}

func TestCloseWhileResizingReleasesEverything(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(click(10, 2))
	f.mouse(motion(12, 2))
	require.Equal(t, Resizing, f.panel.State())

	require.NoError(t, f.panel.Close())
	assert.Equal(t, 0, f.host.live)
	assert.Equal(t, 0, f.doc.ListenerCount(term.EventPointerMove))
	assert.Equal(t, 0, f.doc.ListenerCount(term.EventPointerUp))
	assert.Equal(t, "", f.doc.Cursor())
	assert.Nil(t, f.doc.CaptureHolder(term.MousePointerID))

	require.NoError(t, f.panel.Close())
	changed, err := f.panel.Dispatch(StartResizing{Index: 0, PointerID: term.MousePointerID, Target: f.divider(0)})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBlurEndsDrag(t *testing.T) {
	finished := 0
	f := newFixture(t, 2, Options{OnResizeFinished: func() { finished++ }})
	f.mouse(click(10, 2))
	require.Equal(t, Resizing, f.panel.State())

	require.NoError(t, f.doc.Blur())
	assert.Equal(t, Idle, f.panel.State())
	assert.Equal(t, 0, f.host.live)
	f.queue.Drain()
	assert.Equal(t, 1, finished)
}

func TestRemovingDraggedPaneReleases(t *testing.T) {
	f := newFixture(t, 3, Options{})
	f.mouse(click(14, 2))
	require.Equal(t, 1, f.panel.Active().Index)

	require.NoError(t, f.panel.SetPanes(panes(1)))
	assert.Equal(t, Idle, f.panel.State())
	assert.Equal(t, 0, f.host.live)
	f.render()
}

func TestDividerSuppressesNativeDrag(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(click(10, 2))
	f.mouse(motion(13, 2))
	assert.False(t, f.doc.Dragging())
	assert.Equal(t, 13, f.panel.Override(0).Size)
}

func TestSecondaryButtonDoesNotStart(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(tea.MouseClickMsg{X: 10, Y: 2, Button: tea.MouseRight})
	assert.Equal(t, Idle, f.panel.State())
}

// ---------------------------------------------------------------------------
// Reset and re-entrancy
// ---------------------------------------------------------------------------

func TestResetNotifiesOnceAfterRender(t *testing.T) {
	resets := 0
	f := newFixture(t, 2, Options{OnReset: func() { resets++ }})
	f.mouse(click(10, 2))
	f.mouse(motion(12, 2))
	f.mouse(release(12, 2))
	f.render()
	f.queue.Drain()
	require.NotNil(t, f.panel.Override(0))

	changed, err := f.panel.Dispatch(Reset{Index: 0})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, f.panel.Override(0))
	assert.Zero(t, resets, "not inside the dispatch")

	f.queue.Drain()
	assert.Zero(t, resets, "not before the render")

	f.render()
	assert.Zero(t, resets, "delivered through the queue")
	f.queue.Drain()
	assert.Equal(t, 1, resets)

	f.render()
	f.queue.Drain()
	assert.Equal(t, 1, resets)

	_, err = f.panel.Dispatch(Reset{Index: 9})
	assert.ErrorIs(t, err, ErrPaneIndex)
}

func TestResetWhileResizing(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(click(10, 2))
	f.mouse(motion(12, 2))

	_, err := f.panel.Dispatch(Reset{Index: 0})
	require.NoError(t, err)
	assert.Nil(t, f.panel.Override(0))
	assert.Equal(t, Resizing, f.panel.State())
}

func TestDoubleClickResetsWithoutBubbling(t *testing.T) {
	f := newFixture(t, 2, Options{})
	f.mouse(click(10, 2))
	f.mouse(motion(12, 2))
	f.mouse(release(12, 2))
	f.render()
	require.Equal(t, 12, f.panel.Override(0).Size)

	outer := 0
	wrap := func() {
		root := term.Box(f.panel.Render())
		root.On(term.EventDblClick, func(*term.Event) error { outer++; return nil })
		require.NoError(t, f.doc.Mount(root, f.rect))
		f.panel.Rendered()
	}
	wrap()

	// The divider now sits at x=12.
	f.mouse(click(12, 2))
	f.mouse(release(12, 2))
	wrap()
	f.mouse(click(12, 2))
	f.mouse(release(12, 2))

	assert.Nil(t, f.panel.Override(0))
	assert.Zero(t, outer)
	assert.Equal(t, Idle, f.panel.State())
}

func TestReentrantDispatchIsDeferred(t *testing.T) {
	var f *fixture
	var inner []bool
	f = newFixture(t, 2, Options{
		OnResize: func(int, int) {
			changed, err := f.panel.Dispatch(Reset{Index: 0})
			require.NoError(t, err)
			inner = append(inner, changed)
		},
	})

	f.mouse(click(10, 2))
	f.mouse(motion(13, 2))
	assert.Equal(t, []bool{false}, inner)
	require.NotNil(t, f.panel.Override(0), "the nested reset has not run yet")
	assert.Equal(t, 1, f.queue.Len())

	f.queue.Drain()
	assert.Nil(t, f.panel.Override(0))
	require.NoError(t, f.panel.TakeErr())
}

func TestResetAsync(t *testing.T) {
	resets := 0
	f := newFixture(t, 2, Options{OnReset: func() { resets++ }})
	f.mouse(click(10, 2))
	f.mouse(motion(12, 2))
	f.mouse(release(12, 2))
	f.render()
	f.queue.Drain()

	r := f.panel.ResetAsync(0)
	assert.NotNil(t, f.panel.Override(0))
	f.queue.Drain()
	assert.Nil(t, f.panel.Override(0))
	assert.False(t, r.Ready())

	f.render()
	f.queue.Drain()
	assert.True(t, r.Ready())
	assert.Equal(t, 1, resets)
}

func TestResetAsyncCanceledByClose(t *testing.T) {
	f := newFixture(t, 2, Options{})
	r := f.panel.ResetAsync(0)
	f.queue.Drain()
	require.NoError(t, f.panel.Close())
	assert.True(t, r.Ready())
}
