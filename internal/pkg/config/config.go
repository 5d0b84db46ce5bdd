// Package config holds the declarative mapping configuration: device settings,
// modes with ordered trigger to action mappings, global mappings and detector
// tunables, together with its YAML and TOML file formats.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
)

var (
	ErrUnknownMode        = errors.New("unknown mode")
	ErrUnsupportedFormat  = errors.New("unsupported config format")
	ErrUnsupportedTrigger = errors.New("unsupported trigger type")
)

type TriggerKind string

const (
	KindNote               TriggerKind = "note"
	KindVelocityRange      TriggerKind = "velocity_range"
	KindLongPress          TriggerKind = "long_press"
	KindDoubleTap          TriggerKind = "double_tap"
	KindNoteChord          TriggerKind = "note_chord"
	KindEncoderTurn        TriggerKind = "encoder_turn"
	KindAftertouch         TriggerKind = "aftertouch"
	KindPitchBend          TriggerKind = "pitch_bend"
	KindCC                 TriggerKind = "cc"
	KindGamepadButton      TriggerKind = "gamepad_button"
	KindGamepadButtonChord TriggerKind = "gamepad_button_chord"
	KindGamepadAnalogStick TriggerKind = "gamepad_analog_stick"
	KindGamepadTrigger     TriggerKind = "gamepad_trigger"
)

var SupportedTriggerKinds = map[TriggerKind]bool{
	KindNote:               true,
	KindVelocityRange:      true,
	KindLongPress:          true,
	KindDoubleTap:          true,
	KindNoteChord:          true,
	KindEncoderTurn:        true,
	KindAftertouch:         true,
	KindPitchBend:          true,
	KindCC:                 true,
	KindGamepadButton:      true,
	KindGamepadButtonChord: true,
	KindGamepadAnalogStick: true,
	KindGamepadTrigger:     true,
}

type ActionType string

const (
	ActionKeystroke     ActionType = "keystroke"
	ActionText          ActionType = "text"
	ActionLaunch        ActionType = "launch"
	ActionShell         ActionType = "shell"
	ActionModeChange    ActionType = "mode_change"
	ActionVolumeControl ActionType = "volume_control"
	ActionMouseClick    ActionType = "mouse_click"
	ActionDelay         ActionType = "delay"
)

var SupportedActionTypes = map[ActionType]bool{
	ActionKeystroke:     true,
	ActionText:          true,
	ActionLaunch:        true,
	ActionShell:         true,
	ActionModeChange:    true,
	ActionVolumeControl: true,
	ActionMouseClick:    true,
	ActionDelay:         true,
}

// mode_change values besides mode names
const (
	ModeNext     = "next"
	ModePrevious = "previous"
)

const (
	DefaultDeadzone         = 0.1
	DefaultChordWindow      = 50 * time.Millisecond
	DefaultDoubleTapTimeout = 300 * time.Millisecond
	DefaultHoldThreshold    = 2000 * time.Millisecond

	MaxPitchBend uint16 = 16383
)

type Config struct {
	Device      Device
	DefaultMode string
	Modes       []Mode
	Global      []Mapping
	Advanced    Advanced
}

type Device struct {
	Name     string
	MidiPort string // rawmidi device path, all detected ports are used when empty
	Gamepad  bool   // also read gamepads
	Deadzone float64
}

type Advanced struct {
	ChordWindow      time.Duration
	DoubleTapTimeout time.Duration
	HoldThreshold    time.Duration
	HoldOnce         bool
}

type Mode struct {
	Name     string
	Mappings []Mapping
}

type Mapping struct {
	Trigger     Trigger
	Action      Action
	Description string
}

// Trigger describes the input a mapping reacts to. Only fields relevant to
// Kind are used:
//
//	note                  ID, VelocityMin
//	velocity_range        ID, VelocityMin, VelocityMax
//	long_press            ID, Duration (minimal hold time, 0 for any long press)
//	double_tap            ID
//	note_chord            IDs
//	encoder_turn          ID, Direction (NoDirection for both)
//	aftertouch            PressureMin
//	pitch_bend            BendMin, BendMax
//	cc                    ID, ValueMin
//	gamepad_button        ID
//	gamepad_button_chord  IDs
//	gamepad_analog_stick  ID, Direction (NoDirection for both)
//	gamepad_trigger       ID, ValueMin
type Trigger struct {
	Kind        TriggerKind
	ID          event.ID
	IDs         []event.ID
	VelocityMin uint8
	VelocityMax uint8
	ValueMin    uint8
	Duration    time.Duration
	Direction   event.Direction
	PressureMin uint8
	BendMin     uint16
	BendMax     uint16
}

type Action struct {
	Type  ActionType
	Value string
}

func (a Action) String() string {
	if a.Value == "" {
		return string(a.Type)
	}
	return fmt.Sprintf("%s(%s)", a.Type, a.Value)
}

// Default returns a configuration without mappings and with default tunables.
func Default() Config {
	return Config{
		Device: Device{Deadzone: DefaultDeadzone},
		Advanced: Advanced{
			ChordWindow:      DefaultChordWindow,
			DoubleTapTimeout: DefaultDoubleTapTimeout,
			HoldThreshold:    DefaultHoldThreshold,
		},
	}
}

// ModeIndex returns the mode id of given mode name.
func (c *Config) ModeIndex(name string) (int, error) {
	for i, m := range c.Modes {
		if m.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: \"%s\"", ErrUnknownMode, name)
}

// DefaultModeIndex returns the mode id to start with, 0 when no default is set.
func (c *Config) DefaultModeIndex() int {
	if c.DefaultMode == "" {
		return 0
	}
	i, err := c.ModeIndex(c.DefaultMode)
	if err != nil {
		return 0
	}
	return i
}
