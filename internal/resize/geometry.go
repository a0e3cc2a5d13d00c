// Package resize holds the drag geometry and the resource that owns the
// document-wide state of one in-progress divider drag.
package resize

import (
	"fmt"

	"github.com/xonecas/splitview/internal/term"
)

// Orientation selects the axis a drag acts on.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseOrientation accepts "horizontal" and "vertical"; empty means
// horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

// Axis is the layout axis panes are stacked along.
func (o Orientation) Axis() term.Axis {
	if o == Vertical {
		return term.AxisVertical
	}
	return term.AxisHorizontal
}

// Coord picks the component of (x, y) along the active axis.
func (o Orientation) Coord(x, y int) int {
	if o == Vertical {
		return y
	}
	return x
}

// Cursor is the cursor shown while dragging.
func (o Orientation) Cursor() string {
	if o == Vertical {
		return "row-resize"
	}
	return "col-resize"
}

// Offset is the dragged pane's new size: total grown by the pointer travel
// since start, with the sign flipped for reversed axes, never below zero.
func Offset(total, start, coord int, reverse bool) int {
	delta := coord - start
	if reverse {
		delta = start - coord
	}
	return max(0, total+delta)
}

// Dimensions pairs offset with the unchanged cross-axis size as
// (width, height).
func Dimensions(o Orientation, offset, alt int) (width, height int) {
	if o == Vertical {
		return alt, offset
	}
	return offset, alt
}

// Constraint pins a pane to Size along the orientation's axis.
type Constraint struct {
	Orientation Orientation
	Size        int
}

// String renders the constraint as inline sizing: minimum, maximum and
// exact size all equal.
func (c Constraint) String() string {
	dim := "width"
	if c.Orientation == Vertical {
		dim = "height"
	}
	return fmt.Sprintf("max-%[1]s:%[2]dpx;min-%[1]s:%[2]dpx;%[1]s:%[2]dpx", dim, c.Size)
}

// Extent is the constraint in the form the layout engine honours.
func (c Constraint) Extent() term.Extent {
	return term.Extent{Min: c.Size, Max: c.Size, Exact: c.Size}
}
