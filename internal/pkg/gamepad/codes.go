package gamepad

import "github.com/holoplot/go-evdev"

var keyToButton = map[evdev.EvCode]Button{
	evdev.BTN_A:          South,
	evdev.BTN_B:          East,
	evdev.BTN_X:          West,
	evdev.BTN_Y:          North,
	evdev.BTN_DPAD_UP:    DPadUp,
	evdev.BTN_DPAD_DOWN:  DPadDown,
	evdev.BTN_DPAD_LEFT:  DPadLeft,
	evdev.BTN_DPAD_RIGHT: DPadRight,
	evdev.BTN_TL:         LeftShoulder,
	evdev.BTN_TR:         RightShoulder,
	evdev.BTN_TL2:        LeftTriggerButton,
	evdev.BTN_TR2:        RightTriggerButton,
	evdev.BTN_THUMBL:     LeftThumb,
	evdev.BTN_THUMBR:     RightThumb,
	evdev.BTN_START:      Start,
	evdev.BTN_SELECT:     Select,
	evdev.BTN_MODE:       Mode,
}

var absToAxis = map[evdev.EvCode]Axis{
	evdev.ABS_X:  LeftStickX,
	evdev.ABS_Y:  LeftStickY,
	evdev.ABS_RX: RightStickX,
	evdev.ABS_RY: RightStickY,
	evdev.ABS_Z:  LeftTrigger,
	evdev.ABS_RZ: RightTrigger,
}

// ButtonFromCode maps an EV_KEY code to a Button, UnknownButton if there is no mapping.
func ButtonFromCode(code evdev.EvCode) Button {
	b, ok := keyToButton[code]
	if !ok {
		return UnknownButton
	}
	return b
}

// AxisFromCode maps an EV_ABS code to an Axis, UnknownAxis if there is no mapping.
// Hat axes are not axes here, Translator reports them as D-pad buttons.
func AxisFromCode(code evdev.EvCode) Axis {
	a, ok := absToAxis[code]
	if !ok {
		return UnknownAxis
	}
	return a
}
