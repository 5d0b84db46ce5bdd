package gamepad

import (
	"fmt"
	"time"
)

type EventKind uint8

const (
	ButtonDown EventKind = iota + 1
	ButtonUp
	AxisMoved
)

// Event is a single gamepad report before normalization.
// Value is set for AxisMoved only, in range -1.0 - 1.0
// (triggers rest at -1.0 and go up to 1.0 when fully pressed).
type Event struct {
	Kind   EventKind
	Button Button
	Axis   Axis
	Value  float64
	Time   time.Time
}

func (e Event) String() string {
	switch e.Kind {
	case ButtonDown:
		return fmt.Sprintf("Button Down: %s", e.Button)
	case ButtonUp:
		return fmt.Sprintf("Button Up  : %s", e.Button)
	case AxisMoved:
		return fmt.Sprintf("Axis: %s %5.2f", e.Axis, e.Value)
	default:
		return fmt.Sprintf("Oof, unexpected event kind: %d", e.Kind)
	}
}
