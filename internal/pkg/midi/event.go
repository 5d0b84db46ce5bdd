package midi

import (
	"fmt"
	"time"
)

const (
	// status bytes, channel in the lower nibble
	NoteOffStatus               uint8 = 0b1000 << 4
	NoteOnStatus                uint8 = 0b1001 << 4
	PolyphonicKeyPressureStatus uint8 = 0b1010 << 4 // After-touch
	ControlChangeStatus         uint8 = 0b1011 << 4
	ProgramChangeStatus         uint8 = 0b1100 << 4
	ChannelPressureStatus       uint8 = 0b1101 << 4 // After-touch
	PitchWheelChangeStatus      uint8 = 0b1110 << 4

	// PitchBendCenter is the 14-bit value of an untouched pitch wheel.
	PitchBendCenter uint16 = 8192
	PitchBendMax    uint16 = 16383
)

type Kind uint8

const (
	NoteOn Kind = iota + 1
	NoteOff
	ControlChange
	Aftertouch
	PitchBend
	ProgramChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case ControlChange:
		return "ControlChange"
	case Aftertouch:
		return "Aftertouch"
	case PitchBend:
		return "PitchBend"
	case ProgramChange:
		return "ProgramChange"
	default:
		return "Unknown"
	}
}

// Event is one decoded device message.
//
// Key holds the note number (NoteOn, NoteOff), controller number (ControlChange)
// or program number (ProgramChange). Value holds velocity, controller value,
// pressure or the 14-bit pitch bend value (0-16383, center 8192).
type Event struct {
	Kind    Kind
	Channel uint8
	Key     uint8
	Value   uint16
	Time    time.Time
}

func noteToString(note byte) string {
	return fmt.Sprintf("%-2s%2d", NoteToPitch(note), NoteToOctave(note))
}

func (e Event) String() string {
	channel := e.Channel&0b1111 + 1
	switch e.Kind {
	case NoteOff:
		return fmt.Sprintf("Note Off: %s (channel: %2d)", noteToString(e.Key), channel)
	case NoteOn:
		return fmt.Sprintf("Note On : %s (channel: %2d, velocity: %3d)", noteToString(e.Key), channel, e.Value)
	case ControlChange:
		return fmt.Sprintf("Control Change: %3d, value: %3d (channel: %2d)", e.Key, e.Value, channel)
	case ProgramChange:
		return fmt.Sprintf("Program Change: %3d (channel: %2d)", e.Key, channel)
	case Aftertouch:
		return fmt.Sprintf("Aftertouch: %3d (channel: %2d)", e.Value, channel)
	case PitchBend:
		val := (float64(e.Value) - float64(PitchBendCenter)) / float64(PitchBendCenter)
		return fmt.Sprintf("Pitch Bend: %4.0f%% (channel: %2d)", val*100, channel)
	default:
		return fmt.Sprintf("Oof, unexpected event kind: %d", e.Kind)
	}
}
