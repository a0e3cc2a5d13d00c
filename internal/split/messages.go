package split

import (
	"fmt"

	"github.com/xonecas/splitview/internal/term"
)

// Msg is a transition request for a Panel.
type Msg interface {
	fmt.Stringer
	splitMsg()
}

// StartResizing begins dragging the divider after pane Index. Coord is the
// pointer position along the drag axis.
type StartResizing struct {
	Index     int
	Coord     int
	PointerID int
	Target    *term.Node
}

// MoveResizing reports the pointer position along the drag axis.
type MoveResizing struct {
	Coord int
}

// StopResizing ends the live drag.
type StopResizing struct{}

// Reset clears the size override of pane Index.
type Reset struct {
	Index int
}

func (StartResizing) splitMsg() {}
func (MoveResizing) splitMsg()  {}
func (StopResizing) splitMsg()  {}
func (Reset) splitMsg()         {}

func (m StartResizing) String() string {
	return fmt.Sprintf("start(%d @%d)", m.Index, m.Coord)
}

func (m MoveResizing) String() string { return fmt.Sprintf("move(%d)", m.Coord) }
func (StopResizing) String() string   { return "stop" }
func (m Reset) String() string        { return fmt.Sprintf("reset(%d)", m.Index) }
