// internal/dispatch/events.go
package dispatch

// EventType names the synthetic events in a simulated activation sequence.
// The strings align with standard DOM event types.
type EventType string

const (
	PointerDown EventType = "pointerdown"
	MouseDown   EventType = "mousedown"
	MouseUp     EventType = "mouseup"
	Click       EventType = "click"
)

// Event holds the data for one synthetic input event, dispatched at the
// target's current center coordinates.
type Event struct {
	Type EventType
	X    float64
	Y    float64
	// ClickCount is the consecutive click count (1 for a single click).
	ClickCount int
}

// Point is a viewport coordinate.
type Point struct {
	X float64
	Y float64
}

// Tier enumerates the interaction fidelity levels. The dispatcher starts at
// the richest tier and degrades for the rest of the session when the
// execution environment lacks a primitive.
type Tier int32

const (
	// TierPointer is the full pointer-then-mouse sequence.
	TierPointer Tier = iota
	// TierMouse skips the pointer event when PointerEvent is unavailable.
	TierMouse
)

func (t Tier) String() string {
	if t == TierPointer {
		return "pointer"
	}
	return "mouse"
}
