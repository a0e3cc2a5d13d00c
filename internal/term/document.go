package term

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotAttached     = errors.New("node is not attached to the document")
	ErrInvalidPointer  = errors.New("invalid pointer id")
	ErrNoActivePointer = errors.New("pointer is not active")
	ErrNoListener      = errors.New("no such listener")
	ErrInvalidCursor   = errors.New("invalid cursor")
)

// DoubleClickInterval is the longest gap between two clicks on the same cell
// that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

var cursors = map[string]bool{
	"": true, "auto": true, "default": true, "pointer": true, "text": true,
	"col-resize": true, "row-resize": true, "ew-resize": true, "ns-resize": true,
	"grab": true, "grabbing": true, "move": true, "not-allowed": true,
	"wait": true, "crosshair": true,
}

type listener struct {
	id      ListenerID
	h       Handler
	removed bool
}

// Document owns the mounted node tree and the process-wide pointer state:
// document listeners, pointer capture and the cursor.
type Document struct {
	root  *Node
	rect  image.Rectangle
	gen   uint64
	index map[string]*Node

	listeners map[EventType][]*listener
	nextID    ListenerID

	captures map[int]*Node

	cursor      string
	cursorDirty bool

	// Press state for the single terminal pointer.
	pressed      bool
	pressPrimary bool
	pressTarget  *Node
	pressAt      image.Point
	moved        bool
	nativeDrag   bool

	lastClick   time.Time
	lastClickAt image.Point

	now func() time.Time
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		index:     make(map[string]*Node),
		listeners: make(map[EventType][]*listener),
		captures:  make(map[int]*Node),
		now:       time.Now,
	}
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// Mount lays root out onto r and makes it the document tree. Nodes matched
// by key path with the previous tree keep their pointer capture; a capture
// whose holder disappeared is lost.
func (d *Document) Mount(root *Node, r image.Rectangle) error {
	if root != nil && root.fragment {
		root = Box(root)
	}

	d.gen++
	prev := d.index
	d.index = make(map[string]*Node, len(prev))
	d.root, d.rect = root, r
	if root != nil {
		layout(root, r, "", d.gen, d.index)
	}

	for _, n := range prev {
		if n.gen == d.gen {
			continue
		}
		n.mounted = false
		if n.Ref != nil && n.Ref.node == n {
			n.Ref.node = nil
		}
	}

	if d.pressTarget != nil {
		d.pressTarget = d.resolve(d.pressTarget)
	}

	var errs []error
	for _, id := range sortedKeys(d.captures) {
		holder := d.captures[id]
		if live := d.resolve(holder); live != nil {
			d.captures[id] = live
			continue
		}
		delete(d.captures, id)
		log.Debug().Str("path", holder.path).Int("pointer", id).Msg("capture holder unmounted")
		errs = append(errs, d.dispatch(&Event{
			Type:      EventLostPointerCapture,
			PointerID: id,
			Primary:   true,
			Target:    holder,
		}))
	}
	return errors.Join(errs...)
}

// Root returns the mounted root.
func (d *Document) Root() *Node { return d.root }

// Bounds returns the rectangle the root was mounted onto.
func (d *Document) Bounds() image.Rectangle { return d.rect }

// Paint renders the mounted tree.
func (d *Document) Paint() string {
	if d.root == nil {
		return ""
	}
	return paint(d.root)
}

// resolve maps n to the node currently mounted at the same key path, or nil
// when nothing is.
func (d *Document) resolve(n *Node) *Node {
	if n == nil || n.gen == 0 {
		return nil
	}
	if n.gen == d.gen {
		return n
	}
	return d.index[n.path]
}

// HitTest returns the deepest mounted node containing (x, y).
func (d *Document) HitTest(x, y int) *Node {
	if d.root == nil {
		return nil
	}
	p := image.Pt(x, y)
	if !p.In(d.root.bounds) {
		return nil
	}
	n := d.root
	for {
		var next *Node
		for _, k := range n.kids {
			if p.In(k.bounds) {
				next = k
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// ---------------------------------------------------------------------------
// Listeners
// ---------------------------------------------------------------------------

// AddEventListener registers h for every event of type t that reaches the
// document.
func (d *Document) AddEventListener(t EventType, h Handler) (ListenerID, error) {
	if h == nil {
		return 0, fmt.Errorf("add %s listener: nil handler", t)
	}
	d.nextID++
	d.listeners[t] = append(d.listeners[t], &listener{id: d.nextID, h: h})
	return d.nextID, nil
}

// RemoveEventListener unregisters a listener added with AddEventListener.
func (d *Document) RemoveEventListener(t EventType, id ListenerID) error {
	ls := d.listeners[t]
	i := slices.IndexFunc(ls, func(l *listener) bool { return l.id == id })
	if i < 0 {
		return fmt.Errorf("remove %s listener %d: %w", t, id, ErrNoListener)
	}
	ls[i].removed = true
	d.listeners[t] = slices.Delete(ls, i, i+1)
	return nil
}

// ListenerCount returns the number of document listeners for t.
func (d *Document) ListenerCount(t EventType) int {
	return len(d.listeners[t])
}

// ---------------------------------------------------------------------------
// Pointer capture
// ---------------------------------------------------------------------------

// SetPointerCapture routes every subsequent event of pointer id to n until
// the pointer is released or the capture is lost. Taking capture from another
// node fires lostpointercapture on it.
func (d *Document) SetPointerCapture(n *Node, id int) error {
	if id != MousePointerID {
		return fmt.Errorf("set pointer capture %d: %w", id, ErrInvalidPointer)
	}
	live := d.resolve(n)
	if live == nil {
		return fmt.Errorf("set pointer capture: %w", ErrNotAttached)
	}
	if !d.pressed {
		return fmt.Errorf("set pointer capture %d: %w", id, ErrNoActivePointer)
	}
	prev := d.resolve(d.captures[id])
	d.captures[id] = live
	if prev != nil && prev != live {
		return d.dispatch(&Event{Type: EventLostPointerCapture, PointerID: id, Primary: true, Target: prev})
	}
	return nil
}

// ReleasePointerCapture drops n's capture of pointer id and fires
// lostpointercapture on it. It is a no-op when n does not hold the capture.
func (d *Document) ReleasePointerCapture(n *Node, id int) error {
	if id != MousePointerID {
		return fmt.Errorf("release pointer capture %d: %w", id, ErrInvalidPointer)
	}
	if !d.HasPointerCapture(n, id) {
		return nil
	}
	holder := d.captures[id]
	delete(d.captures, id)
	return d.dispatch(&Event{Type: EventLostPointerCapture, PointerID: id, Primary: true, Target: holder})
}

// HasPointerCapture reports whether n holds the capture of pointer id.
func (d *Document) HasPointerCapture(n *Node, id int) bool {
	holder, ok := d.captures[id]
	if !ok {
		return false
	}
	live := d.resolve(n)
	return live != nil && live == d.resolve(holder)
}

// CaptureHolder returns the node holding the capture of pointer id.
func (d *Document) CaptureHolder(id int) *Node {
	return d.resolve(d.captures[id])
}

// ---------------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------------

// Cursor returns the current cursor value; empty means the terminal default.
func (d *Document) Cursor() string { return d.cursor }

// SetCursor sets the process-wide cursor.
func (d *Document) SetCursor(v string) error {
	if !cursors[v] {
		return fmt.Errorf("set cursor %q: %w", v, ErrInvalidCursor)
	}
	if v != d.cursor {
		d.cursor = v
		d.cursorDirty = true
	}
	return nil
}

// TakeCursorChange returns the escape sequence that applies the cursor set
// since the last call, if it changed.
func (d *Document) TakeCursorChange() (string, bool) {
	if !d.cursorDirty {
		return "", false
	}
	d.cursorDirty = false
	shape := d.cursor
	if shape == "" || shape == "auto" {
		shape = "default"
	}
	return ansi.SetPointerShape(shape), true
}

// ---------------------------------------------------------------------------
// Event routing
// ---------------------------------------------------------------------------

// HandleMouse translates a bubbletea mouse message into pointer events and
// dispatches them. Handler errors are joined.
func (d *Document) HandleMouse(msg tea.MouseMsg) error {
	m := msg.Mouse()
	switch msg.(type) {
	case tea.MouseClickMsg:
		return d.press(m)
	case tea.MouseMotionMsg:
		return d.motion(m)
	case tea.MouseReleaseMsg:
		return d.release(m)
	}
	return nil
}

// Blur drops every pointer capture and forgets the press, as when the
// terminal loses focus mid-gesture.
func (d *Document) Blur() error {
	d.pressed, d.moved, d.nativeDrag = false, false, false
	d.pressTarget = nil
	var errs []error
	for _, id := range sortedKeys(d.captures) {
		errs = append(errs, d.ReleasePointerCapture(d.captures[id], id))
	}
	return errors.Join(errs...)
}

// Dragging reports whether the host is running a native drag.
func (d *Document) Dragging() bool { return d.nativeDrag }

// Pressed reports whether the pointer button is down.
func (d *Document) Pressed() bool { return d.pressed }

func (d *Document) press(m tea.Mouse) error {
	target := d.HitTest(m.X, m.Y)
	d.pressed = true
	d.pressPrimary = m.Button == tea.MouseLeft
	d.pressTarget = target
	d.pressAt = image.Pt(m.X, m.Y)
	d.moved = false
	d.nativeDrag = false
	return d.dispatch(d.event(EventPointerDown, m, d.routed(target)))
}

func (d *Document) motion(m tea.Mouse) error {
	if d.nativeDrag {
		return nil
	}
	var errs []error
	if d.pressed && !d.moved {
		d.moved = true
		if t := d.resolve(d.pressTarget); t != nil && d.pressPrimary {
			ev := d.event(EventDragStart, m, t)
			errs = append(errs, d.dispatch(ev))
			if !ev.DefaultPrevented() {
				log.Debug().Str("path", t.path).Msg("native drag started")
				d.nativeDrag = true
				return errors.Join(errs...)
			}
		}
	}
	errs = append(errs, d.dispatch(d.event(EventPointerMove, m, d.routed(d.HitTest(m.X, m.Y)))))
	return errors.Join(errs...)
}

func (d *Document) release(m tea.Mouse) error {
	if d.nativeDrag {
		d.nativeDrag = false
		d.pressed = false
		d.pressTarget = nil
		return nil
	}

	hit := d.HitTest(m.X, m.Y)
	ev := d.event(EventPointerUp, m, d.routed(hit))
	ev.Primary = d.pressPrimary
	errs := []error{d.dispatch(ev)}

	if holder, ok := d.captures[MousePointerID]; ok {
		errs = append(errs, d.ReleasePointerCapture(holder, MousePointerID))
	}

	clicked := d.pressed && d.pressPrimary && !d.moved
	pressTarget := d.resolve(d.pressTarget)
	d.pressed = false
	d.pressTarget = nil

	if clicked {
		at := image.Pt(m.X, m.Y)
		now := d.now()
		if !d.lastClick.IsZero() && at == d.lastClickAt && now.Sub(d.lastClick) <= DoubleClickInterval {
			d.lastClick = time.Time{}
			target := pressTarget
			if target == nil {
				target = hit
			}
			dbl := d.event(EventDblClick, m, target)
			dbl.Primary = true
			errs = append(errs, d.dispatch(dbl))
		} else {
			d.lastClick, d.lastClickAt = now, at
		}
	}
	return errors.Join(errs...)
}

// routed returns the capture holder when there is one, otherwise target.
func (d *Document) routed(target *Node) *Node {
	if holder := d.resolve(d.captures[MousePointerID]); holder != nil {
		return holder
	}
	return target
}

func (d *Document) event(t EventType, m tea.Mouse, target *Node) *Event {
	return &Event{
		Type:      t,
		X:         m.X,
		Y:         m.Y,
		PointerID: MousePointerID,
		Primary:   m.Button == tea.MouseLeft,
		Target:    target,
	}
}

// dispatch bubbles ev from its target to the root, then runs the document
// listeners registered when dispatch began.
func (d *Document) dispatch(ev *Event) error {
	snapshot := slices.Clone(d.listeners[ev.Type])

	var errs []error
	for n := ev.Target; n != nil && !ev.propagationStopped; n = n.parent {
		if h := n.handlers[ev.Type]; h != nil {
			ev.CurrentTarget = n
			errs = append(errs, h(ev))
		}
	}
	ev.CurrentTarget = nil
	if ev.propagationStopped {
		return errors.Join(errs...)
	}
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		errs = append(errs, l.h(ev))
	}
	return errors.Join(errs...)
}

func sortedKeys(m map[int]*Node) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
