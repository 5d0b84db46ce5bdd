package gamepad

import (
	"fmt"

	"github.com/gethiox/padmacro/internal/pkg/event"
)

// Button is a gamepad button in the unified id space (128..255).
type Button event.ID

// Axis is a gamepad analog axis in the unified id space, sticks 128..131,
// triggers 132..133.
type Axis event.ID

const (
	South Button = iota + Button(event.MinGamepadID)
	East
	West
	North
	DPadUp
	DPadDown
	DPadLeft
	DPadRight
	LeftShoulder
	RightShoulder
	LeftTriggerButton
	RightTriggerButton
	LeftThumb
	RightThumb
	Start
	Select
	Mode

	UnknownButton = Button(event.UnknownID)
)

const (
	LeftStickX Axis = iota + Axis(event.MinStickAxisID)
	LeftStickY
	RightStickX
	RightStickY
	LeftTrigger
	RightTrigger

	UnknownAxis = Axis(event.UnknownID)
)

var buttonNames = map[Button]string{
	South:              "south",
	East:               "east",
	West:               "west",
	North:              "north",
	DPadUp:             "dpad_up",
	DPadDown:           "dpad_down",
	DPadLeft:           "dpad_left",
	DPadRight:          "dpad_right",
	LeftShoulder:       "left_shoulder",
	RightShoulder:      "right_shoulder",
	LeftTriggerButton:  "left_trigger_button",
	RightTriggerButton: "right_trigger_button",
	LeftThumb:          "left_thumb",
	RightThumb:         "right_thumb",
	Start:              "start",
	Select:             "select",
	Mode:               "mode",
}

var axisNames = map[Axis]string{
	LeftStickX:   "left_stick_x",
	LeftStickY:   "left_stick_y",
	RightStickX:  "right_stick_x",
	RightStickY:  "right_stick_y",
	LeftTrigger:  "left_trigger",
	RightTrigger: "right_trigger",
}

// ButtonFromString and AxisFromString resolve configuration names.
// Short aliases like "a", "lb" or "lx" are accepted as well.
var ButtonFromString = map[string]Button{
	"a":  South,
	"b":  East,
	"x":  West,
	"y":  North,
	"lb": LeftShoulder,
	"rb": RightShoulder,
	"lt": LeftTriggerButton,
	"rt": RightTriggerButton,
}

var AxisFromString = map[string]Axis{
	"lx": LeftStickX,
	"ly": LeftStickY,
	"rx": RightStickX,
	"ry": RightStickY,
	"lt": LeftTrigger,
	"rt": RightTrigger,
}

func init() {
	for b, name := range buttonNames {
		ButtonFromString[name] = b
	}
	for a, name := range axisNames {
		AxisFromString[name] = a
	}
}

func (b Button) ID() event.ID {
	return event.ID(b)
}

func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

func (a Axis) ID() event.ID {
	return event.ID(a)
}

// IsTrigger tells if the axis rests at one end of its range instead of the center.
func (a Axis) IsTrigger() bool {
	return a == LeftTrigger || a == RightTrigger
}

func (a Axis) String() string {
	if name, ok := axisNames[a]; ok {
		return name
	}
	return fmt.Sprintf("axis(%d)", uint8(a))
}
