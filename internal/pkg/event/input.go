package event

import (
	"fmt"
	"time"
)

type InputKind uint8

const (
	InputPadPressed InputKind = iota + 1
	InputPadReleased
	InputEncoderTurned
	InputAftertouch
	InputPitchBend
	InputProgramChange
)

func (k InputKind) String() string {
	switch k {
	case InputPadPressed:
		return "PadPressed"
	case InputPadReleased:
		return "PadReleased"
	case InputEncoderTurned:
		return "EncoderTurned"
	case InputAftertouch:
		return "AftertouchChanged"
	case InputPitchBend:
		return "PitchBendMoved"
	case InputProgramChange:
		return "ProgramChanged"
	default:
		return "Unknown"
	}
}

// Input is a normalized event, independent of the device protocol it came from.
//
// Value carries the kind specific payload: velocity for InputPadPressed,
// controller or axis value for InputEncoderTurned, pressure for InputAftertouch,
// 14-bit bend (0-16383) for InputPitchBend and program number for InputProgramChange.
type Input struct {
	Kind  InputKind
	ID    ID
	Value uint16
	Time  time.Time
}

func (i Input) String() string {
	switch i.Kind {
	case InputPadPressed:
		return fmt.Sprintf("%s: %s (velocity: %3d)", i.Kind, i.ID, i.Value)
	case InputPadReleased:
		return fmt.Sprintf("%s: %s", i.Kind, i.ID)
	case InputEncoderTurned:
		return fmt.Sprintf("%s: %s (value: %3d)", i.Kind, i.ID, i.Value)
	case InputAftertouch:
		return fmt.Sprintf("%s: %3d", i.Kind, i.Value)
	case InputPitchBend:
		return fmt.Sprintf("%s: %5d", i.Kind, i.Value)
	case InputProgramChange:
		return fmt.Sprintf("%s: %3d", i.Kind, i.Value)
	default:
		return fmt.Sprintf("unexpected input kind: %d", i.Kind)
	}
}
