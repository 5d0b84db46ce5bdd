// Package gesture classifies normalized inputs into timed gestures:
// presses and releases, holds, double taps, chords and encoder turns.
package gesture

import (
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
)

const (
	DefaultChordWindow      = 50 * time.Millisecond
	DefaultDoubleTapTimeout = 300 * time.Millisecond
	DefaultHoldThreshold    = 2000 * time.Millisecond

	// release classification, shorter than ShortPressLimit is ShortPress,
	// shorter than MediumPressLimit is MediumPress, LongPress otherwise
	ShortPressLimit  = 200 * time.Millisecond
	MediumPressLimit = 1000 * time.Millisecond
)

// Config holds detector tunables.
// HoldOnce reports HoldDetected once per press instead of on every poll.
type Config struct {
	ChordWindow      time.Duration
	DoubleTapTimeout time.Duration
	HoldThreshold    time.Duration
	HoldOnce         bool
}

func DefaultConfig() Config {
	return Config{
		ChordWindow:      DefaultChordWindow,
		DoubleTapTimeout: DefaultDoubleTapTimeout,
		HoldThreshold:    DefaultHoldThreshold,
	}
}

type chordEntry struct {
	id   event.ID
	time time.Time
}

// Detector keeps the classification state of one input session.
// It is not safe for concurrent use, see Session.
type Detector struct {
	cfg Config

	pressedAt    [256]time.Time
	pressed      [256]bool
	holdReported [256]bool

	lastValue    [256]uint16
	hasLastValue [256]bool

	lastTap    [256]time.Time
	hasLastTap [256]bool

	chord []chordEntry
}

func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:   cfg,
		chord: make([]chordEntry, 0, 8),
	}
}

func (d *Detector) Config() Config {
	return d.cfg
}

// SetConfig replaces tunables, the tracked state is kept.
func (d *Detector) SetConfig(cfg Config) {
	d.cfg = cfg
}

// Reset forgets all presses, taps, controller values and chord candidates.
func (d *Detector) Reset() {
	cfg := d.cfg
	chord := d.chord[:0]
	*d = Detector{cfg: cfg, chord: chord}
}

// Process classifies a single input and returns gestures in emission order.
// Inputs have to be delivered in chronological order.
func (d *Detector) Process(in event.Input) []event.Gesture {
	switch in.Kind {
	case event.InputPadPressed:
		return d.press(in)
	case event.InputPadReleased:
		return d.release(in)
	case event.InputEncoderTurned:
		return d.encoder(in)
	case event.InputAftertouch:
		return []event.Gesture{{Kind: event.AftertouchChanged, ID: in.ID, Value: in.Value}}
	case event.InputPitchBend:
		return []event.Gesture{{Kind: event.PitchBendMoved, ID: in.ID, Value: in.Value}}
	default:
		return nil
	}
}

func (d *Detector) press(in event.Input) []event.Gesture {
	id := in.ID
	velocity := in.Value
	if velocity > 255 {
		velocity = 255
	}

	var gestures = make([]event.Gesture, 0, 3)
	gestures = append(gestures, event.Gesture{
		Kind:     event.PadPressed,
		ID:       id,
		Velocity: uint8(velocity),
		Level:    event.VelocityLevel(int(in.Value)),
	})

	d.pressedAt[id] = in.Time
	d.pressed[id] = true
	d.holdReported[id] = false

	// a detected double tap clears the tap time, so the next press starts a new pair
	if d.hasLastTap[id] {
		since := in.Time.Sub(d.lastTap[id])
		if since >= 0 && since < d.cfg.DoubleTapTimeout {
			gestures = append(gestures, event.Gesture{Kind: event.DoubleTap, ID: id})
			d.hasLastTap[id] = false
		} else {
			d.lastTap[id] = in.Time
		}
	} else {
		d.lastTap[id] = in.Time
		d.hasLastTap[id] = true
	}

	d.chord = append(d.chord, chordEntry{id: id, time: in.Time})
	d.pruneChord(in.Time)
	if len(d.chord) > 1 {
		ids := make([]event.ID, len(d.chord))
		for i, e := range d.chord {
			ids[i] = e.id
		}
		gestures = append(gestures, event.Gesture{Kind: event.ChordDetected, IDs: ids})
	}

	return gestures
}

// pruneChord drops candidates older than the chord window, relative to the newest press.
func (d *Detector) pruneChord(newest time.Time) {
	limit := newest.Add(-d.cfg.ChordWindow)
	kept := d.chord[:0]
	for _, e := range d.chord {
		if !e.time.Before(limit) {
			kept = append(kept, e)
		}
	}
	d.chord = kept
}

func (d *Detector) release(in event.Input) []event.Gesture {
	id := in.ID

	if !d.pressed[id] {
		return []event.Gesture{{Kind: event.PadReleased, ID: id}}
	}

	held := in.Time.Sub(d.pressedAt[id])
	if held < 0 {
		held = 0
	}

	var class event.Kind
	switch {
	case held < ShortPressLimit:
		class = event.ShortPress
	case held < MediumPressLimit:
		class = event.MediumPress
	default:
		class = event.LongPress
	}

	d.pressed[id] = false
	d.pressedAt[id] = time.Time{}
	d.holdReported[id] = false

	kept := d.chord[:0]
	for _, e := range d.chord {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	d.chord = kept

	return []event.Gesture{
		{Kind: event.PadReleased, ID: id, Held: held, HeldKnown: true},
		{Kind: class, ID: id, Held: held},
	}
}

func (d *Detector) encoder(in event.Input) []event.Gesture {
	id := in.ID
	prior, known := d.lastValue[id], d.hasLastValue[id]

	d.lastValue[id] = in.Value
	d.hasLastValue[id] = true

	if !known || prior == in.Value {
		return nil
	}

	g := event.Gesture{Kind: event.EncoderTurned, ID: id, Value: in.Value}
	if in.Value > prior {
		g.Direction = event.Clockwise
		g.Delta = in.Value - prior
	} else {
		g.Direction = event.CounterClockwise
		g.Delta = prior - in.Value
	}
	return []event.Gesture{g}
}

// PollHolds reports every pressed id held for at least the hold threshold,
// in ascending id order.
func (d *Detector) PollHolds(now time.Time) []event.Gesture {
	var gestures []event.Gesture
	for i := range d.pressed {
		if !d.pressed[i] {
			continue
		}
		held := now.Sub(d.pressedAt[i])
		if held < d.cfg.HoldThreshold {
			continue
		}
		if d.cfg.HoldOnce && d.holdReported[i] {
			continue
		}
		d.holdReported[i] = true
		gestures = append(gestures, event.Gesture{Kind: event.HoldDetected, ID: event.ID(i), Held: held})
	}
	return gestures
}

// Pressed tells if given id is currently held down.
func (d *Detector) Pressed(id event.ID) bool {
	return d.pressed[id]
}
