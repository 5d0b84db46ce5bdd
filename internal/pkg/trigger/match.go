package trigger

import (
	"sort"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
)

// MatchRaw returns the first mapping of given mode matching a normalized input.
// Global mappings are searched only when the mode id is unknown.
func (t *Table) MatchRaw(in event.Input, mode int) *Mapping {
	if mode >= 0 && mode < len(t.modes) {
		return firstRaw(t.modes[mode], in)
	}
	return firstRaw(t.global, in)
}

// MatchGesture returns the first mapping of given mode matching a gesture,
// global mappings are searched when the mode has no match.
func (t *Table) MatchGesture(g event.Gesture, mode int) *Mapping {
	if mode >= 0 && mode < len(t.modes) {
		if m := firstGesture(t.modes[mode], g); m != nil {
			return m
		}
	}
	return firstGesture(t.global, g)
}

func firstRaw(mappings []Mapping, in event.Input) *Mapping {
	for i := range mappings {
		if mappings[i].Trigger.MatchesInput(in) {
			return &mappings[i]
		}
	}
	return nil
}

func firstGesture(mappings []Mapping, g event.Gesture) *Mapping {
	for i := range mappings {
		if mappings[i].Trigger.MatchesGesture(g) {
			return &mappings[i]
		}
	}
	return nil
}

// stickDirection tells which side of the center a raw stick value is on.
func stickDirection(value uint16) event.Direction {
	switch {
	case value > 64:
		return event.Clockwise
	case value < 64:
		return event.CounterClockwise
	default:
		return event.NoDirection
	}
}

func directionMatches(want, got event.Direction) bool {
	return want == event.NoDirection || want == got
}

// MatchesInput tells if a normalized input structurally matches the trigger.
// Timing based kinds (long_press, double_tap, chords) never match raw inputs.
func (t *Trigger) MatchesInput(in event.Input) bool {
	switch t.Kind {
	case config.KindNote:
		return in.Kind == event.InputPadPressed && in.ID == t.ID && in.Value >= uint16(t.VelocityMin)
	case config.KindVelocityRange:
		return in.Kind == event.InputPadPressed && in.ID == t.ID &&
			in.Value >= uint16(t.VelocityMin) && in.Value <= uint16(t.VelocityMax)
	case config.KindCC:
		return in.Kind == event.InputEncoderTurned && in.ID == t.ID && in.Value >= uint16(t.ValueMin)
	case config.KindEncoderTurn:
		// raw controller values carry no direction
		return in.Kind == event.InputEncoderTurned && in.ID == t.ID && t.Direction == event.NoDirection
	case config.KindAftertouch:
		return in.Kind == event.InputAftertouch && in.Value >= uint16(t.PressureMin)
	case config.KindPitchBend:
		return in.Kind == event.InputPitchBend && in.Value >= t.BendMin && in.Value <= t.BendMax
	case config.KindGamepadButton:
		return in.Kind == event.InputPadPressed && in.ID.IsGamepad() && in.ID == t.ID
	case config.KindGamepadAnalogStick:
		return in.Kind == event.InputEncoderTurned && in.ID.IsStickAxis() && in.ID == t.ID &&
			directionMatches(t.Direction, stickDirection(in.Value))
	case config.KindGamepadTrigger:
		return in.Kind == event.InputEncoderTurned && in.ID.IsTriggerAxis() && in.ID == t.ID &&
			in.Value >= uint16(t.ValueMin)
	default:
		return false
	}
}

// MatchesGesture tells if a gesture structurally matches the trigger.
func (t *Trigger) MatchesGesture(g event.Gesture) bool {
	switch t.Kind {
	case config.KindNote:
		return g.Kind == event.PadPressed && g.ID == t.ID && g.Velocity >= t.VelocityMin
	case config.KindVelocityRange:
		return g.Kind == event.PadPressed && g.ID == t.ID &&
			g.Velocity >= t.VelocityMin && g.Velocity <= t.VelocityMax
	case config.KindLongPress:
		return g.Kind == event.LongPress && g.ID == t.ID && g.Held >= t.Duration
	case config.KindDoubleTap:
		return g.Kind == event.DoubleTap && g.ID == t.ID
	case config.KindNoteChord:
		return g.Kind == event.ChordDetected && sameIDs(t.IDs, g.IDs)
	case config.KindEncoderTurn:
		return g.Kind == event.EncoderTurned && g.ID == t.ID && directionMatches(t.Direction, g.Direction)
	case config.KindAftertouch:
		return g.Kind == event.AftertouchChanged && g.Value >= uint16(t.PressureMin)
	case config.KindPitchBend:
		return g.Kind == event.PitchBendMoved && g.Value >= t.BendMin && g.Value <= t.BendMax
	case config.KindCC:
		return g.Kind == event.EncoderTurned && g.ID == t.ID && g.Value >= uint16(t.ValueMin)
	case config.KindGamepadButton:
		return g.Kind == event.PadPressed && g.ID.IsGamepad() && g.ID == t.ID
	case config.KindGamepadButtonChord:
		if g.Kind != event.ChordDetected {
			return false
		}
		for _, id := range g.IDs {
			if !id.IsGamepad() {
				return false
			}
		}
		return sameIDs(t.IDs, g.IDs)
	case config.KindGamepadAnalogStick:
		return g.Kind == event.EncoderTurned && g.ID.IsStickAxis() && g.ID == t.ID &&
			directionMatches(t.Direction, g.Direction)
	case config.KindGamepadTrigger:
		return g.Kind == event.EncoderTurned && g.ID.IsTriggerAxis() && g.ID == t.ID &&
			g.Value >= uint16(t.ValueMin)
	default:
		return false
	}
}

// sameIDs compares a sorted id set with an unsorted one, cardinality included.
func sameIDs(sorted, ids []event.ID) bool {
	if len(sorted) != len(ids) {
		return false
	}

	var buf [16]event.ID
	var cp []event.ID
	if len(ids) <= len(buf) {
		cp = buf[:len(ids)]
		copy(cp, ids)
		for i := 1; i < len(cp); i++ {
			for j := i; j > 0 && cp[j] < cp[j-1]; j-- {
				cp[j], cp[j-1] = cp[j-1], cp[j]
			}
		}
	} else {
		cp = make([]event.ID, len(ids))
		copy(cp, ids)
		sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	}

	for i := range sorted {
		if sorted[i] != cp[i] {
			return false
		}
	}
	return true
}
