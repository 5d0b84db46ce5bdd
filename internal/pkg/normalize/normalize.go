// Package normalize translates device specific events into the unified
// event.Input vocabulary. All functions are pure.
package normalize

import (
	"math"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/midi"
)

const (
	// DefaultDeadzone is the analog deadzone used by Axis.
	DefaultDeadzone = 0.1
	// AxisCenter is the normalized value of an axis inside the deadzone.
	AxisCenter uint8 = 64
	// ButtonVelocity is reported for digital buttons, they carry no native velocity.
	ButtonVelocity uint16 = 100
)

// Normalize converts a decoded MIDI event. Note and controller numbers are
// limited to 7 bits, so the result always lands in the MIDI id range.
func Normalize(ev midi.Event) event.Input {
	in := event.Input{ID: event.ID(ev.Key & 0x7F), Value: ev.Value, Time: ev.Time}

	switch ev.Kind {
	case midi.NoteOn:
		in.Kind = event.InputPadPressed
	case midi.NoteOff:
		in.Kind = event.InputPadReleased
	case midi.ControlChange:
		in.Kind = event.InputEncoderTurned
	case midi.Aftertouch:
		in.Kind = event.InputAftertouch
	case midi.PitchBend:
		in.Kind = event.InputPitchBend
	case midi.ProgramChange:
		in.Kind = event.InputProgramChange
		in.ID = 0
		in.Value = uint16(ev.Key & 0x7F)
	}

	return in
}

// Axis converts an analog value in range -1.0 - 1.0 into 0-127 with the default deadzone.
func Axis(value float64) uint8 {
	return AxisWithDeadzone(value, DefaultDeadzone)
}

// AxisWithDeadzone converts an analog value in range -1.0 - 1.0 into 0-127,
// values within the deadzone report AxisCenter.
func AxisWithDeadzone(value, deadzone float64) uint8 {
	if math.IsNaN(value) || math.Abs(value) < deadzone {
		return AxisCenter
	}
	scaled := math.Round((value + 1) * 63.5)
	return uint8(math.Max(0, math.Min(127, scaled)))
}

// ButtonPress reports a digital button press as a pad press with fixed velocity.
func ButtonPress(b gamepad.Button, t time.Time) event.Input {
	return event.Input{Kind: event.InputPadPressed, ID: gamepadID(event.ID(b)), Value: ButtonVelocity, Time: t}
}

func ButtonRelease(b gamepad.Button, t time.Time) event.Input {
	return event.Input{Kind: event.InputPadReleased, ID: gamepadID(event.ID(b)), Time: t}
}

// AxisMove reports an analog axis as an encoder with the normalized value.
func AxisMove(a gamepad.Axis, value, deadzone float64, t time.Time) event.Input {
	return event.Input{
		Kind:  event.InputEncoderTurned,
		ID:    gamepadID(event.ID(a)),
		Value: uint16(AxisWithDeadzone(value, deadzone)),
		Time:  t,
	}
}

// Gamepad converts a translated gamepad event, ok is false for unsupported kinds.
func Gamepad(ev gamepad.Event, deadzone float64) (event.Input, bool) {
	switch ev.Kind {
	case gamepad.ButtonDown:
		return ButtonPress(ev.Button, ev.Time), true
	case gamepad.ButtonUp:
		return ButtonRelease(ev.Button, ev.Time), true
	case gamepad.AxisMoved:
		return AxisMove(ev.Axis, ev.Value, deadzone, ev.Time), true
	default:
		return event.Input{}, false
	}
}

// gamepadID keeps gamepad controls out of the MIDI range, anything below it is unknown.
func gamepadID(id event.ID) event.ID {
	if !id.IsGamepad() {
		return event.UnknownID
	}
	return id
}
