// Package split is a resizable split panel: panes separated by dividers that
// resize the pane before them when dragged.
package split

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/splitview/internal/async"
	"github.com/xonecas/splitview/internal/resize"
	"github.com/xonecas/splitview/internal/term"
)

var (
	ErrNoPanes   = errors.New("split panel needs at least one pane")
	ErrPaneIndex = errors.New("pane index out of range")
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Resizing
)

func (s State) String() string {
	if s == Resizing {
		return "resizing"
	}
	return "idle"
}

// Panel is the split panel controller. It is driven from a single goroutine,
// the one that drains its queue.
type Panel struct {
	opts  Options
	queue *async.Queue
	slot  *resize.Slot

	panes     []term.Content
	refs      []*term.Ref
	overrides []*resize.Constraint

	dispatching  bool
	pendingReset bool
	resetWaiters []*async.Sender[struct{}]
	deferredErrs []error
	closed       bool
}

// New returns an idle panel over panes. Notifications and re-entrant
// messages are posted to queue.
func New(host resize.Host, queue *async.Queue, panes []term.Content, opts Options) (*Panel, error) {
	if len(panes) == 0 {
		return nil, ErrNoPanes
	}
	p := &Panel{
		opts:  opts,
		queue: queue,
		slot:  resize.NewSlot(host),
	}
	p.resizePanes(panes)
	return p, nil
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

// Dispatch applies msg and reports whether the panel needs a re-render.
// Messages sent while another is being applied are queued instead.
func (p *Panel) Dispatch(msg Msg) (bool, error) {
	if p.closed {
		log.Debug().Stringer("msg", msg).Msg("dispatch after close ignored")
		return false, nil
	}
	if _, ok := msg.(StopResizing); ok && p.slot.Releasing() {
		return false, nil
	}
	if p.dispatching {
		log.Debug().Stringer("msg", msg).Msg("re-entrant dispatch deferred")
		p.queue.Post(func() {
			if _, err := p.Dispatch(msg); err != nil {
				p.deferredErrs = append(p.deferredErrs, err)
			}
		})
		return false, nil
	}

	p.dispatching = true
	defer func() { p.dispatching = false }()

	switch m := msg.(type) {
	case StartResizing:
		return p.start(m)
	case MoveResizing:
		return p.move(m)
	case StopResizing:
		return p.stop()
	case Reset:
		return p.reset(m.Index)
	}
	return false, fmt.Errorf("unknown split message %T", msg)
}

func (p *Panel) start(m StartResizing) (bool, error) {
	if m.Index < 0 || m.Index >= len(p.panes) {
		return false, fmt.Errorf("start resizing pane %d of %d: %w", m.Index, len(p.panes), ErrPaneIndex)
	}
	w, h, ok := p.refs[m.Index].Size()
	if !ok {
		log.Debug().Int("index", m.Index).Msg("pane not attached yet, resize aborted")
		return false, nil
	}

	changed := false
	if p.slot.Active() != nil {
		log.Debug().Int("index", m.Index).Msg("replacing live resize")
		if err := p.slot.End(); err != nil {
			return true, err
		}
		changed = true
	}

	total, alt := w, h
	if p.opts.Orientation == resize.Vertical {
		total, alt = h, w
	}
	_, err := p.slot.Begin(resize.Params{
		Index:       m.Index,
		Start:       m.Coord,
		Total:       total,
		Alt:         alt,
		Orientation: p.opts.Orientation,
		Reverse:     p.opts.Reverse,
		PointerID:   m.PointerID,
		Target:      m.Target,
	}, resize.Callbacks{
		Move: func(coord int) error {
			_, err := p.Dispatch(MoveResizing{Coord: coord})
			return err
		},
		Up: func() error {
			_, err := p.Dispatch(StopResizing{})
			return err
		},
	})
	if err != nil {
		var acq *resize.AcquireError
		if errors.As(err, &acq) && acq.Rollback == nil {
			log.Warn().Err(err).Int("index", m.Index).Msg("resize aborted")
			return changed, nil
		}
		return changed, err
	}
	return true, nil
}

func (p *Panel) move(m MoveResizing) (bool, error) {
	st := p.slot.Active()
	if st == nil {
		return false, nil
	}
	c := st.Constraint(m.Coord)
	p.overrides[st.Index] = &c
	if p.opts.OnResize != nil {
		p.opts.OnResize(st.Dimensions(m.Coord))
	}
	return true, nil
}

func (p *Panel) stop() (bool, error) {
	if p.slot.Active() == nil {
		return false, nil
	}
	err := p.slot.End()
	if fn := p.opts.OnResizeFinished; fn != nil {
		p.queue.Post(fn)
	}
	return true, err
}

func (p *Panel) reset(i int) (bool, error) {
	if i < 0 || i >= len(p.panes) {
		return false, fmt.Errorf("reset pane %d of %d: %w", i, len(p.panes), ErrPaneIndex)
	}
	p.overrides[i] = nil
	p.pendingReset = true
	return true, nil
}

// ---------------------------------------------------------------------------
// Props
// ---------------------------------------------------------------------------

// SetPanes replaces the pane list. Overrides keep their positions; new panes
// start with none. A live drag on a pane that no longer exists is released.
func (p *Panel) SetPanes(panes []term.Content) error {
	if len(panes) == 0 {
		return ErrNoPanes
	}
	var err error
	if st := p.slot.Active(); st != nil && st.Index >= len(panes) {
		log.Debug().Int("index", st.Index).Msg("dragged pane removed")
		err = p.slot.End()
	}
	p.resizePanes(panes)
	return err
}

func (p *Panel) resizePanes(panes []term.Content) {
	n := len(panes)
	for len(p.refs) < n {
		p.refs = append(p.refs, term.NewRef())
		p.overrides = append(p.overrides, nil)
	}
	p.refs = p.refs[:n]
	p.overrides = p.overrides[:n]
	p.panes = panes
}

// SetOptions replaces the options. A live drag keeps the orientation and
// direction it started with.
func (p *Panel) SetOptions(opts Options) {
	p.opts = opts
}

// Options returns the current options.
func (p *Panel) Options() Options { return p.opts }

// Close releases a live drag and cancels pending reset waiters. It is safe
// to call more than once.
func (p *Panel) Close() error {
	if p.closed {
		return nil
	}
	err := p.slot.End()
	p.closed = true
	p.pendingReset = false
	for _, w := range p.resetWaiters {
		w.Close()
	}
	p.resetWaiters = nil
	return err
}

// ResetAsync queues a Reset of pane i. The receiver completes once the reset
// notification has been delivered after the next render.
func (p *Panel) ResetAsync(i int) *async.Receiver[struct{}] {
	return async.Emit(p.queue, func(s *async.Sender[struct{}]) {
		if _, err := p.Dispatch(Reset{Index: i}); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("reset failed")
			s.Close()
			return
		}
		if p.closed {
			s.Close()
			return
		}
		p.resetWaiters = append(p.resetWaiters, s)
	})
}

// TakeErr returns and clears errors from deferred dispatches.
func (p *Panel) TakeErr() error {
	err := errors.Join(p.deferredErrs...)
	p.deferredErrs = nil
	return err
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// State reports whether a drag is live.
func (p *Panel) State() State {
	if p.slot.Active() != nil {
		return Resizing
	}
	return Idle
}

// Active returns the live drag, or nil.
func (p *Panel) Active() *resize.State { return p.slot.Active() }

// Len returns the number of panes.
func (p *Panel) Len() int { return len(p.panes) }

// Override returns pane i's size override, or nil.
func (p *Panel) Override(i int) *resize.Constraint {
	if i < 0 || i >= len(p.overrides) {
		return nil
	}
	return p.overrides[i]
}

// Overrides returns a copy of every pane's override.
func (p *Panel) Overrides() []*resize.Constraint {
	return append([]*resize.Constraint(nil), p.overrides...)
}

// Ref returns pane i's measurement handle.
func (p *Panel) Ref(i int) *term.Ref { return p.refs[i] }

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

// Render builds the node tree: pane 0, then a divider and a pane for every
// further pane.
func (p *Panel) Render() *term.Node {
	children := make([]*term.Node, 0, 2*len(p.panes)-1)
	for i, c := range p.panes {
		if i > 0 {
			children = append(children, p.divider(i-1))
		}
		children = append(children, p.child(i, c))
	}
	if p.opts.NoWrap {
		return term.Fragment(children...)
	}

	root := term.Box(children...)
	root.ID = p.opts.ID
	root.Key = "split-panel"
	root.Classes = []string{"split-panel"}
	if p.opts.Orientation == resize.Vertical {
		root.Classes = append(root.Classes, "orient-vertical")
	}
	if p.opts.Reverse {
		root.Classes = append(root.Classes, "orient-reverse")
	}
	root.Axis = p.opts.Orientation.Axis()
	root.Reverse = p.opts.Reverse
	return root
}

func (p *Panel) child(i int, c term.Content) *term.Node {
	n := &term.Node{
		Key:     "child-" + strconv.Itoa(i),
		Classes: []string{"split-panel-child"},
		Content: c,
		Ref:     p.refs[i],
	}
	if o := p.overrides[i]; o != nil {
		e := resize.Constraint{Orientation: p.opts.Orientation, Size: o.Size}.Extent()
		n.Extent = &e
		n.Classes = append(n.Classes, "is-width-override")
	}
	return n
}

// Style returns the inline sizing of pane i, empty when it has no override.
func (p *Panel) Style(i int) string {
	o := p.Override(i)
	if o == nil {
		return ""
	}
	return resize.Constraint{Orientation: p.opts.Orientation, Size: o.Size}.String()
}

// Rendered is called once the tree from Render has been mounted. It delivers
// a pending reset notification through the queue.
func (p *Panel) Rendered() {
	if !p.pendingReset {
		return
	}
	p.pendingReset = false
	fn := p.opts.OnReset
	waiters := p.resetWaiters
	p.resetWaiters = nil
	p.queue.Post(func() {
		if fn != nil {
			fn()
		}
		for _, w := range waiters {
			w.Send(struct{}{})
		}
	})
}
