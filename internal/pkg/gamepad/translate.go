package gamepad

import (
	"math"
	"time"

	"github.com/holoplot/go-evdev"
)

const (
	EV_KEY_RELEASE = 0
	EV_KEY_PRESS   = 1
	EV_KEY_REPEAT  = 2
)

var (
	defaultStickInfo   = evdev.AbsInfo{Minimum: -32768, Maximum: 32767}
	defaultTriggerInfo = evdev.AbsInfo{Minimum: 0, Maximum: 255}
)

type hat struct {
	neg, pos Button
	state    int32
}

// Translator converts evdev events of one gamepad into Events.
// It keeps the D-pad hat state, so every device needs its own Translator.
type Translator struct {
	absInfos map[evdev.EvCode]evdev.AbsInfo
	hats     map[evdev.EvCode]*hat
}

// NewTranslator creates a translator scaling axes with the given absinfo ranges,
// axes without an entry use the common 16-bit stick and 8-bit trigger ranges.
func NewTranslator(absInfos map[evdev.EvCode]evdev.AbsInfo) *Translator {
	if absInfos == nil {
		absInfos = make(map[evdev.EvCode]evdev.AbsInfo)
	}
	return &Translator{
		absInfos: absInfos,
		hats: map[evdev.EvCode]*hat{
			evdev.ABS_HAT0X: {neg: DPadLeft, pos: DPadRight},
			evdev.ABS_HAT0Y: {neg: DPadUp, pos: DPadDown},
		},
	}
}

// Translate returns zero or more events for a single evdev event.
// Synchronization, key repeat and unrelated event types yield nothing.
func (t *Translator) Translate(ev evdev.InputEvent, now time.Time) []Event {
	switch ev.Type {
	case evdev.EV_KEY:
		switch ev.Value {
		case EV_KEY_PRESS:
			return []Event{{Kind: ButtonDown, Button: ButtonFromCode(ev.Code), Time: now}}
		case EV_KEY_RELEASE:
			return []Event{{Kind: ButtonUp, Button: ButtonFromCode(ev.Code), Time: now}}
		default:
			return nil
		}
	case evdev.EV_ABS:
		if h, ok := t.hats[ev.Code]; ok {
			return h.update(ev.Value, now)
		}
		axis := AxisFromCode(ev.Code)
		return []Event{{Kind: AxisMoved, Axis: axis, Value: t.scale(ev.Code, axis, ev.Value), Time: now}}
	default:
		return nil
	}
}

func (h *hat) update(value int32, now time.Time) []Event {
	var state int32
	switch {
	case value < 0:
		state = -1
	case value > 0:
		state = 1
	}
	if state == h.state {
		return nil
	}

	var events = make([]Event, 0, 2)
	switch h.state {
	case -1:
		events = append(events, Event{Kind: ButtonUp, Button: h.neg, Time: now})
	case 1:
		events = append(events, Event{Kind: ButtonUp, Button: h.pos, Time: now})
	}
	switch state {
	case -1:
		events = append(events, Event{Kind: ButtonDown, Button: h.neg, Time: now})
	case 1:
		events = append(events, Event{Kind: ButtonDown, Button: h.pos, Time: now})
	}
	h.state = state
	return events
}

// scale converts a raw axis value into -1.0 - 1.0 range.
// Axes with negative minimum are scaled separately on both sides of zero,
// others linearly over the whole range.
func (t *Translator) scale(code evdev.EvCode, axis Axis, raw int32) float64 {
	info, ok := t.absInfos[code]
	if !ok || info.Minimum == info.Maximum {
		info = defaultStickInfo
		if axis.IsTrigger() {
			info = defaultTriggerInfo
		}
	}

	var value float64
	if info.Minimum < 0 {
		if raw < 0 {
			value = float64(raw) / math.Abs(float64(info.Minimum))
		} else if info.Maximum > 0 {
			value = float64(raw) / float64(info.Maximum)
		}
	} else {
		value = float64(raw-info.Minimum)/float64(info.Maximum-info.Minimum)*2 - 1
	}

	return math.Max(-1, math.Min(1, value))
}
