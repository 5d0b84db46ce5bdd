package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Decode converts one complete channel message into an Event.
// NoteOn with zero velocity is reported as NoteOff, polyphonic key pressure
// as Aftertouch. Messages of other types are not supported.
func Decode(data []byte, t time.Time) (Event, bool) {
	msg := gomidi.Message(data)

	var channel, key, value uint8
	var relative int16
	var absolute uint16

	switch {
	case msg.GetNoteStart(&channel, &key, &value):
		return Event{Kind: NoteOn, Channel: channel, Key: key, Value: uint16(value), Time: t}, true
	case msg.GetNoteEnd(&channel, &key):
		return Event{Kind: NoteOff, Channel: channel, Key: key, Time: t}, true
	case msg.GetControlChange(&channel, &key, &value):
		return Event{Kind: ControlChange, Channel: channel, Key: key, Value: uint16(value), Time: t}, true
	case msg.GetAfterTouch(&channel, &value):
		return Event{Kind: Aftertouch, Channel: channel, Value: uint16(value), Time: t}, true
	case msg.GetPolyAfterTouch(&channel, &key, &value):
		return Event{Kind: Aftertouch, Channel: channel, Key: key, Value: uint16(value), Time: t}, true
	case msg.GetPitchBend(&channel, &relative, &absolute):
		return Event{Kind: PitchBend, Channel: channel, Value: absolute, Time: t}, true
	case msg.GetProgramChange(&channel, &key):
		return Event{Kind: ProgramChange, Channel: channel, Key: key, Time: t}, true
	}
	return Event{}, false
}
