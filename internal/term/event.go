package term

// EventType names a pointer event routed through the document.
type EventType string

const (
	EventPointerDown        EventType = "pointerdown"
	EventPointerMove        EventType = "pointermove"
	EventPointerUp          EventType = "pointerup"
	EventDblClick           EventType = "dblclick"
	EventDragStart          EventType = "dragstart"
	EventLostPointerCapture EventType = "lostpointercapture"
)

// MousePointerID is the pointer id of the terminal mouse. Terminals report a
// single pointer, so every event carries this id.
const MousePointerID = 1

// Handler reacts to an event. Errors are collected by the document and
// returned to whoever fed it the input.
type Handler func(ev *Event) error

// ListenerID identifies a document listener registration.
type ListenerID uint64

// Event is a pointer event in cell coordinates.
type Event struct {
	Type      EventType
	X, Y      int
	PointerID int
	// Primary is true when the left button caused or is held for the event.
	Primary bool

	// Target is the node the event was dispatched to; CurrentTarget is the
	// node whose handler is running (nil for document listeners).
	Target        *Node
	CurrentTarget *Node

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault cancels the host's default action for the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation keeps the event from reaching ancestors and the document.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }
