// Package term is the host runtime the widgets live in: a node tree that is
// laid out onto terminal cells, painted to a string, and fed pointer events
// translated from bubbletea mouse messages.
package term

import (
	"image"
	"slices"
)

// Axis is the direction a box lays its children out along.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// Extent pins a node's size along its parent's axis. The layout engine
// clamps Exact into [Min, Max].
type Extent struct {
	Min, Max, Exact int
}

func (e Extent) size() int {
	return max(e.Min, min(e.Exact, e.Max))
}

// Content is an opaque leaf renderer. View must return at most height lines
// of at most width cells; the painter pads and truncates.
type Content interface {
	View(width, height int) string
}

// ContentFunc adapts a function to Content.
type ContentFunc func(width, height int) string

// View implements Content.
func (f ContentFunc) View(width, height int) string { return f(width, height) }

// Node is one element of the render tree. Trees are rebuilt on every render;
// the document matches nodes across renders by their key path.
type Node struct {
	ID      string
	Key     string
	Classes []string
	Axis    Axis
	Reverse bool
	// Fixed is the node's main-axis size in cells; zero means flexible.
	Fixed    int
	Extent   *Extent
	Content  Content
	Children []*Node
	Ref      *Ref

	fragment bool
	handlers map[EventType]Handler

	parent  *Node
	kids    []*Node
	bounds  image.Rectangle
	path    string
	gen     uint64
	mounted bool
}

// Box returns a container node.
func Box(children ...*Node) *Node {
	return &Node{Children: children}
}

// Fragment returns a node whose children are spliced into its parent.
func Fragment(children ...*Node) *Node {
	return &Node{Children: children, fragment: true}
}

// Leaf returns a node that paints c.
func Leaf(c Content) *Node {
	return &Node{Content: c}
}

// On registers h for events of type t dispatched to or bubbling through n.
func (n *Node) On(t EventType, h Handler) *Node {
	if n.handlers == nil {
		n.handlers = make(map[EventType]Handler)
	}
	n.handlers[t] = h
	return n
}

// HasClass reports whether n carries class c.
func (n *Node) HasClass(c string) bool {
	return slices.Contains(n.Classes, c)
}

// IsFragment reports whether n was built with Fragment.
func (n *Node) IsFragment() bool { return n.fragment }

// Bounds returns the cells n occupied at the last mount.
func (n *Node) Bounds() image.Rectangle { return n.bounds }

// Parent returns the laid-out parent, skipping fragments.
func (n *Node) Parent() *Node { return n.parent }

// Mounted reports whether n belongs to the currently mounted tree.
func (n *Node) Mounted() bool { return n.mounted }

// Find returns the first node in n's subtree (n included) for which match
// returns true, walking declared children depth first.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll collects every node in n's subtree for which match returns true.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		if match(x) {
			out = append(out, x)
		}
		for _, c := range x.Children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Ref is a measurement handle. It is attached to the node that carries it
// once that node has been laid out, and detached when the node leaves the
// mounted tree.
type Ref struct {
	node *Node
}

// NewRef returns a detached ref.
func NewRef() *Ref { return &Ref{} }

// Node returns the attached node, or nil.
func (r *Ref) Node() *Node {
	if r == nil {
		return nil
	}
	return r.node
}

// Attached reports whether the ref points at a mounted node.
func (r *Ref) Attached() bool {
	return r != nil && r.node != nil && r.node.mounted
}

// Size returns the attached node's width and height.
func (r *Ref) Size() (width, height int, ok bool) {
	if !r.Attached() {
		return 0, 0, false
	}
	b := r.node.bounds
	return b.Dx(), b.Dy(), true
}
