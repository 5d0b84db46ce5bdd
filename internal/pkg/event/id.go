// Package event defines the unified input vocabulary shared by MIDI and
// gamepad sources, and the gesture events derived from it.
package event

import "fmt"

// ID addresses a single control in the unified id space.
// MIDI notes and controllers occupy 0-127, gamepad controls 128-255.
type ID uint8

const (
	MaxMidiID    ID = 127
	MinGamepadID ID = 128

	// stick axes
	MinStickAxisID ID = 128
	MaxStickAxisID ID = 131
	// analog triggers
	MinTriggerAxisID ID = 132
	MaxTriggerAxisID ID = 133

	// UnknownID is assigned to device controls without a known mapping.
	UnknownID ID = 255
)

func (id ID) IsMidi() bool {
	return id <= MaxMidiID
}

func (id ID) IsGamepad() bool {
	return id >= MinGamepadID
}

func (id ID) IsStickAxis() bool {
	return id >= MinStickAxisID && id <= MaxStickAxisID
}

func (id ID) IsTriggerAxis() bool {
	return id >= MinTriggerAxisID && id <= MaxTriggerAxisID
}

func (id ID) String() string {
	if id == UnknownID {
		return "unknown"
	}
	if id.IsGamepad() {
		return fmt.Sprintf("gp%d", id-MinGamepadID)
	}
	return fmt.Sprintf("%d", id)
}
