package event

import (
	"fmt"
	"strings"
	"time"
)

type Kind uint8

const (
	PadPressed Kind = iota + 1
	PadReleased
	ShortPress
	MediumPress
	LongPress
	HoldDetected
	DoubleTap
	ChordDetected
	EncoderTurned
	AftertouchChanged
	PitchBendMoved
)

var kindNames = map[Kind]string{
	PadPressed:        "PadPressed",
	PadReleased:       "PadReleased",
	ShortPress:        "ShortPress",
	MediumPress:       "MediumPress",
	LongPress:         "LongPress",
	HoldDetected:      "HoldDetected",
	DoubleTap:         "DoubleTap",
	ChordDetected:     "ChordDetected",
	EncoderTurned:     "EncoderTurned",
	AftertouchChanged: "AftertouchChanged",
	PitchBendMoved:    "PitchBendMoved",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "Unknown"
	}
	return name
}

type Level uint8

const (
	Soft Level = iota + 1
	Medium
	Hard
)

func (l Level) String() string {
	switch l {
	case Soft:
		return "soft"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "none"
	}
}

// VelocityLevel classifies a note velocity, values outside 0-127 are Medium.
func VelocityLevel(velocity int) Level {
	switch {
	case velocity < 0 || velocity > 127:
		return Medium
	case velocity <= 40:
		return Soft
	case velocity <= 80:
		return Medium
	default:
		return Hard
	}
}

type Direction uint8

const (
	NoDirection Direction = iota
	Clockwise
	CounterClockwise
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter_clockwise"
	default:
		return "none"
	}
}

// Gesture is a timing derived interpretation of one or more inputs.
// Only the fields relevant to Kind are set:
//
//	PadPressed        ID, Velocity, Level
//	PadReleased       ID, Held, HeldKnown (false for a release without a matching press)
//	ShortPress        ID, Held
//	MediumPress       ID, Held
//	LongPress         ID, Held
//	HoldDetected      ID, Held
//	DoubleTap         ID
//	ChordDetected     IDs
//	EncoderTurned     ID, Value, Direction, Delta
//	AftertouchChanged Value
//	PitchBendMoved    Value
type Gesture struct {
	Kind      Kind
	ID        ID
	Velocity  uint8
	Level     Level
	Held      time.Duration
	HeldKnown bool
	IDs       []ID
	Value     uint16
	Direction Direction
	Delta     uint16
}

func (g Gesture) String() string {
	switch g.Kind {
	case PadPressed:
		return fmt.Sprintf("%s: %s (velocity: %3d, %s)", g.Kind, g.ID, g.Velocity, g.Level)
	case PadReleased:
		if !g.HeldKnown {
			return fmt.Sprintf("%s: %s", g.Kind, g.ID)
		}
		return fmt.Sprintf("%s: %s (held: %dms)", g.Kind, g.ID, g.Held.Milliseconds())
	case ShortPress, MediumPress, LongPress, HoldDetected:
		return fmt.Sprintf("%s: %s (%dms)", g.Kind, g.ID, g.Held.Milliseconds())
	case DoubleTap:
		return fmt.Sprintf("%s: %s", g.Kind, g.ID)
	case ChordDetected:
		ids := make([]string, 0, len(g.IDs))
		for _, id := range g.IDs {
			ids = append(ids, id.String())
		}
		return fmt.Sprintf("%s: [%s]", g.Kind, strings.Join(ids, ", "))
	case EncoderTurned:
		return fmt.Sprintf("%s: %s (value: %3d, %s, delta: %d)", g.Kind, g.ID, g.Value, g.Direction, g.Delta)
	case AftertouchChanged, PitchBendMoved:
		return fmt.Sprintf("%s: %d", g.Kind, g.Value)
	default:
		return fmt.Sprintf("unexpected gesture kind: %d", g.Kind)
	}
}
