package resize

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/splitview/internal/term"
)

// Host is the document-wide state a drag borrows.
type Host interface {
	AddEventListener(t term.EventType, h term.Handler) (term.ListenerID, error)
	RemoveEventListener(t term.EventType, id term.ListenerID) error
	SetPointerCapture(n *term.Node, pointerID int) error
	ReleasePointerCapture(n *term.Node, pointerID int) error
	Cursor() string
	SetCursor(v string) error
}

// Params is what a drag captures when it starts.
type Params struct {
	Index       int
	Start       int
	Total, Alt  int
	Orientation Orientation
	Reverse     bool
	PointerID   int
	Target      *term.Node
}

// Callbacks receive the document-scoped pointer events of a live drag.
type Callbacks struct {
	// Move gets the pointer coordinate along the drag axis.
	Move func(coord int) error
	Up   func() error
}

// AcquireError reports which acquisition step failed. Rollback holds the
// errors from releasing what the attempt had already taken.
type AcquireError struct {
	Step     string
	Err      error
	Rollback error
}

func (e *AcquireError) Error() string {
	msg := fmt.Sprintf("acquire %s: %v", e.Step, e.Err)
	if e.Rollback != nil {
		msg += fmt.Sprintf(" (rollback: %v)", e.Rollback)
	}
	return msg
}

func (e *AcquireError) Unwrap() []error {
	if e.Rollback == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Rollback}
}

// State is the live resource of one drag: a pointer capture grant, the
// cursor override and two document listeners. Only a Slot creates one.
type State struct {
	Params

	host       Host
	prevCursor string

	captured  bool
	cursorSet bool
	moveID    term.ListenerID
	upID      term.ListenerID

	released bool
}

// acquire takes capture, then the cursor, then the listeners. On failure
// everything already taken is released again.
func acquire(host Host, p Params, cb Callbacks) (*State, error) {
	s := &State{Params: p, host: host}

	fail := func(step string, err error) (*State, error) {
		return nil, &AcquireError{Step: step, Err: err, Rollback: s.Release()}
	}

	if err := host.SetPointerCapture(p.Target, p.PointerID); err != nil {
		return fail("pointer capture", err)
	}
	s.captured = true

	s.prevCursor = host.Cursor()
	if err := host.SetCursor(p.Orientation.Cursor()); err != nil {
		return fail("cursor", err)
	}
	s.cursorSet = true

	id, err := host.AddEventListener(term.EventPointerMove, func(ev *term.Event) error {
		if cb.Move == nil {
			return nil
		}
		return cb.Move(p.Orientation.Coord(ev.X, ev.Y))
	})
	if err != nil {
		return fail("pointermove listener", err)
	}
	s.moveID = id

	id, err = host.AddEventListener(term.EventPointerUp, func(*term.Event) error {
		if cb.Up == nil {
			return nil
		}
		return cb.Up()
	})
	if err != nil {
		return fail("pointerup listener", err)
	}
	s.upID = id

	log.Debug().
		Int("index", p.Index).
		Int("start", p.Start).
		Int("total", p.Total).
		Str("orientation", p.Orientation.String()).
		Msg("resize acquired")
	return s, nil
}

// Offset is the pane size for a pointer at coord.
func (s *State) Offset(coord int) int {
	return Offset(s.Total, s.Start, coord, s.Reverse)
}

// Dimensions is the (width, height) reported for a pointer at coord.
func (s *State) Dimensions(coord int) (width, height int) {
	return Dimensions(s.Orientation, s.Offset(coord), s.Alt)
}

// Constraint is the override pinned on the pane for a pointer at coord.
func (s *State) Constraint(coord int) Constraint {
	return Constraint{Orientation: s.Orientation, Size: s.Offset(coord)}
}

// Released reports whether Release has run.
func (s *State) Released() bool { return s.released }

// Release gives back everything the drag holds, in reverse order of
// acquisition. Every step runs even when an earlier one fails; failures are
// joined. Only the first call does anything.
func (s *State) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	var errs []error
	if s.upID != 0 {
		if err := s.host.RemoveEventListener(term.EventPointerUp, s.upID); err != nil {
			errs = append(errs, fmt.Errorf("remove pointerup listener: %w", err))
		}
		s.upID = 0
	}
	if s.moveID != 0 {
		if err := s.host.RemoveEventListener(term.EventPointerMove, s.moveID); err != nil {
			errs = append(errs, fmt.Errorf("remove pointermove listener: %w", err))
		}
		s.moveID = 0
	}
	if s.cursorSet {
		if err := s.host.SetCursor(s.prevCursor); err != nil {
			errs = append(errs, fmt.Errorf("restore cursor %q: %w", s.prevCursor, err))
		}
		s.cursorSet = false
	}
	if s.captured {
		if err := s.host.ReleasePointerCapture(s.Target, s.PointerID); err != nil {
			errs = append(errs, fmt.Errorf("release pointer capture: %w", err))
		}
		s.captured = false
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Warn().Err(err).Int("index", s.Index).Msg("resize release failed")
	} else {
		log.Debug().Int("index", s.Index).Msg("resize released")
	}
	return err
}
