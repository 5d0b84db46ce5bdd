package trigger

import (
	"testing"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	actionA = config.Action{Type: config.ActionKeystroke, Value: "a"}
	actionB = config.Action{Type: config.ActionKeystroke, Value: "b"}
	actionG = config.Action{Type: config.ActionShell, Value: "global"}
)

func pressed(id event.ID, velocity uint16) event.Input {
	return event.Input{Kind: event.InputPadPressed, ID: id, Value: velocity}
}

func encoder(id event.ID, value uint16) event.Input {
	return event.Input{Kind: event.InputEncoderTurned, ID: id, Value: value}
}

func compile(t *testing.T, cfg config.Config) *Table {
	table, warnings := Compile(cfg)
	require.Empty(t, warnings)
	return table
}

func action(m *Mapping) config.Action {
	if m == nil {
		return config.Action{}
	}
	return m.Action
}

func TestMatchRawNoteScenario(t *testing.T) {
	table := compile(t, config.Config{Modes: []config.Mode{{
		Name:     "default",
		Mappings: []config.Mapping{{Trigger: config.Trigger{Kind: config.KindNote, ID: 36}, Action: actionA}},
	}}})

	assert.Equal(t, actionA, action(table.MatchRaw(pressed(36, 64), 0)))
	assert.Nil(t, table.MatchRaw(pressed(127, 64), 0))
}

func TestChordExactness(t *testing.T) {
	table := compile(t, config.Config{Modes: []config.Mode{{
		Name:     "default",
		Mappings: []config.Mapping{{Trigger: config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{5, 1}}, Action: actionA}},
	}}})

	d := gesture.NewDetector(gesture.DefaultConfig())
	now := time.Unix(0, 0)

	var last []event.Gesture
	for i, id := range []event.ID{1, 5, 9} {
		last = d.Process(event.Input{Kind: event.InputPadPressed, ID: id, Value: 100, Time: now.Add(time.Duration(i*10) * time.Millisecond)})
	}
	chord := last[len(last)-1]
	require.Equal(t, event.ChordDetected, chord.Kind)
	assert.Nil(t, table.MatchGesture(chord, 0), "3 ids never match a 2 id chord")

	d.Reset()
	d.Process(event.Input{Kind: event.InputPadPressed, ID: 5, Value: 100, Time: now})
	last = d.Process(event.Input{Kind: event.InputPadPressed, ID: 1, Value: 100, Time: now.Add(10 * time.Millisecond)})
	chord = last[len(last)-1]
	require.Equal(t, event.ChordDetected, chord.Kind)
	assert.Equal(t, actionA, action(table.MatchGesture(chord, 0)))
}

func TestThreeNoteChordScenario(t *testing.T) {
	table := compile(t, config.Config{Modes: []config.Mode{{
		Name:     "default",
		Mappings: []config.Mapping{{Trigger: config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{1, 5, 9}}, Action: actionB}},
	}}})

	d := gesture.NewDetector(gesture.DefaultConfig())
	now := time.Unix(0, 0)

	assert.Nil(t, table.MatchGesture(d.Process(event.Input{Kind: event.InputPadPressed, ID: 1, Value: 90, Time: now})[0], 0))

	second := d.Process(event.Input{Kind: event.InputPadPressed, ID: 5, Value: 90, Time: now.Add(10 * time.Millisecond)})
	assert.Nil(t, table.MatchGesture(second[len(second)-1], 0))

	third := d.Process(event.Input{Kind: event.InputPadPressed, ID: 9, Value: 90, Time: now.Add(20 * time.Millisecond)})
	chord := third[len(third)-1]
	require.Equal(t, event.ChordDetected, chord.Kind)
	assert.Equal(t, []event.ID{1, 5, 9}, chord.IDs)
	assert.Equal(t, actionB, action(table.MatchGesture(chord, 0)))
}

func TestModeGlobalAsymmetry(t *testing.T) {
	table := compile(t, config.Config{
		Modes: []config.Mode{{
			Name:     "default",
			Mappings: []config.Mapping{{Trigger: config.Trigger{Kind: config.KindNote, ID: 1}, Action: actionA}},
		}},
		Global: []config.Mapping{{Trigger: config.Trigger{Kind: config.KindNote, ID: 2}, Action: actionG}},
	})

	in := pressed(2, 100)
	g := event.Gesture{Kind: event.PadPressed, ID: 2, Velocity: 100}

	// existing mode without a match
	assert.Nil(t, table.MatchRaw(in, 0))
	assert.Equal(t, actionG, action(table.MatchGesture(g, 0)))

	// unknown mode id
	assert.Equal(t, actionG, action(table.MatchRaw(in, 7)))
	assert.Equal(t, actionG, action(table.MatchGesture(g, -1)))

	// mode match wins
	assert.Equal(t, actionA, action(table.MatchRaw(pressed(1, 100), 0)))
	assert.Equal(t, actionA, action(table.MatchGesture(event.Gesture{Kind: event.PadPressed, ID: 1, Velocity: 100}, 0)))
}

func TestFirstMatchWins(t *testing.T) {
	table := compile(t, config.Config{Modes: []config.Mode{{
		Name: "default",
		Mappings: []config.Mapping{
			{Trigger: config.Trigger{Kind: config.KindNote, ID: 1, VelocityMin: 100}, Action: actionA},
			{Trigger: config.Trigger{Kind: config.KindNote, ID: 1}, Action: actionB},
		},
	}}})

	assert.Equal(t, actionA, action(table.MatchRaw(pressed(1, 110), 0)))
	assert.Equal(t, actionB, action(table.MatchRaw(pressed(1, 50), 0)))
}

func TestTriggerMatchesInput(t *testing.T) {
	for _, tc := range []struct {
		name    string
		trigger config.Trigger
		in      event.Input
		match   bool
	}{
		{"note velocity", config.Trigger{Kind: config.KindNote, ID: 3, VelocityMin: 50}, pressed(3, 49), false},
		{"note release", config.Trigger{Kind: config.KindNote, ID: 3}, event.Input{Kind: event.InputPadReleased, ID: 3}, false},
		{"velocity range inside", config.Trigger{Kind: config.KindVelocityRange, ID: 3, VelocityMin: 10, VelocityMax: 20}, pressed(3, 20), true},
		{"velocity range outside", config.Trigger{Kind: config.KindVelocityRange, ID: 3, VelocityMin: 10, VelocityMax: 20}, pressed(3, 21), false},
		{"cc", config.Trigger{Kind: config.KindCC, ID: 7, ValueMin: 64}, encoder(7, 64), true},
		{"cc below", config.Trigger{Kind: config.KindCC, ID: 7, ValueMin: 64}, encoder(7, 63), false},
		{"cc other id", config.Trigger{Kind: config.KindCC, ID: 7}, encoder(8, 100), false},
		{"encoder any direction", config.Trigger{Kind: config.KindEncoderTurn, ID: 7}, encoder(7, 1), true},
		{"encoder with direction", config.Trigger{Kind: config.KindEncoderTurn, ID: 7, Direction: event.Clockwise}, encoder(7, 100), false},
		{"aftertouch", config.Trigger{Kind: config.KindAftertouch, PressureMin: 30}, event.Input{Kind: event.InputAftertouch, Value: 30}, true},
		{"pitch bend in range", config.Trigger{Kind: config.KindPitchBend, BendMin: 9000, BendMax: 16383}, event.Input{Kind: event.InputPitchBend, Value: 16383}, true},
		{"pitch bend below", config.Trigger{Kind: config.KindPitchBend, BendMin: 9000, BendMax: 16383}, event.Input{Kind: event.InputPitchBend, Value: 8192}, false},
		{"button", config.Trigger{Kind: config.KindGamepadButton, ID: 130}, pressed(130, 100), true},
		{"button in midi range", config.Trigger{Kind: config.KindGamepadButton, ID: 30}, pressed(30, 100), false},
		{"stick positive", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 129, Direction: event.Clockwise}, encoder(129, 100), true},
		{"stick wrong side", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 129, Direction: event.Clockwise}, encoder(129, 10), false},
		{"stick center with direction", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 129, Direction: event.CounterClockwise}, encoder(129, 64), false},
		{"stick any direction", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 129}, encoder(129, 10), true},
		{"stick in midi range", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 1}, encoder(1, 10), false},
		{"trigger axis", config.Trigger{Kind: config.KindGamepadTrigger, ID: 132, ValueMin: 100}, encoder(132, 127), true},
		{"trigger axis released", config.Trigger{Kind: config.KindGamepadTrigger, ID: 132, ValueMin: 100}, encoder(132, 0), false},
		{"trigger on stick id", config.Trigger{Kind: config.KindGamepadTrigger, ID: 130}, encoder(130, 127), false},
		{"long press never raw", config.Trigger{Kind: config.KindLongPress, ID: 3}, pressed(3, 100), false},
		{"double tap never raw", config.Trigger{Kind: config.KindDoubleTap, ID: 3}, pressed(3, 100), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			trigger, _ := compileTrigger(tc.trigger)
			assert.Equal(t, tc.match, trigger.MatchesInput(tc.in))
		})
	}
}

func TestTriggerMatchesGesture(t *testing.T) {
	for _, tc := range []struct {
		name    string
		trigger config.Trigger
		g       event.Gesture
		match   bool
	}{
		{"note", config.Trigger{Kind: config.KindNote, ID: 3, VelocityMin: 50}, event.Gesture{Kind: event.PadPressed, ID: 3, Velocity: 50}, true},
		{"long press", config.Trigger{Kind: config.KindLongPress, ID: 3}, event.Gesture{Kind: event.LongPress, ID: 3, Held: time.Second}, true},
		{"long press too short", config.Trigger{Kind: config.KindLongPress, ID: 3, Duration: 3 * time.Second}, event.Gesture{Kind: event.LongPress, ID: 3, Held: time.Second}, false},
		{"long press on medium press", config.Trigger{Kind: config.KindLongPress, ID: 3}, event.Gesture{Kind: event.MediumPress, ID: 3}, false},
		{"double tap", config.Trigger{Kind: config.KindDoubleTap, ID: 130}, event.Gesture{Kind: event.DoubleTap, ID: 130}, true},
		{"encoder direction", config.Trigger{Kind: config.KindEncoderTurn, ID: 1, Direction: event.CounterClockwise}, event.Gesture{Kind: event.EncoderTurned, ID: 1, Direction: event.CounterClockwise}, true},
		{"encoder wrong direction", config.Trigger{Kind: config.KindEncoderTurn, ID: 1, Direction: event.CounterClockwise}, event.Gesture{Kind: event.EncoderTurned, ID: 1, Direction: event.Clockwise}, false},
		{"button chord", config.Trigger{Kind: config.KindGamepadButtonChord, IDs: []event.ID{137, 136}}, event.Gesture{Kind: event.ChordDetected, IDs: []event.ID{136, 137}}, true},
		{"button chord superset", config.Trigger{Kind: config.KindGamepadButtonChord, IDs: []event.ID{136, 137}}, event.Gesture{Kind: event.ChordDetected, IDs: []event.ID{136, 137, 128}}, false},
		{"button chord with midi ids", config.Trigger{Kind: config.KindGamepadButtonChord, IDs: []event.ID{1, 5}}, event.Gesture{Kind: event.ChordDetected, IDs: []event.ID{1, 5}}, false},
		{"note chord subset", config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{1, 5, 9}}, event.Gesture{Kind: event.ChordDetected, IDs: []event.ID{1, 5}}, false},
		{"note chord duplicates", config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{1, 5}}, event.Gesture{Kind: event.ChordDetected, IDs: []event.ID{1, 1}}, false},
		{"stick gesture", config.Trigger{Kind: config.KindGamepadAnalogStick, ID: 128, Direction: event.Clockwise}, event.Gesture{Kind: event.EncoderTurned, ID: 128, Direction: event.Clockwise}, true},
		{"aftertouch", config.Trigger{Kind: config.KindAftertouch}, event.Gesture{Kind: event.AftertouchChanged, Value: 1}, true},
		{"pitch bend full range", config.Trigger{Kind: config.KindPitchBend, BendMax: config.MaxPitchBend}, event.Gesture{Kind: event.PitchBendMoved, Value: 12000}, true},
		{"pitch bend fully down", config.Trigger{Kind: config.KindPitchBend, BendMin: 0, BendMax: 0}, event.Gesture{Kind: event.PitchBendMoved, Value: 0}, true},
		{"pitch bend fully down only", config.Trigger{Kind: config.KindPitchBend, BendMin: 0, BendMax: 0}, event.Gesture{Kind: event.PitchBendMoved, Value: 12000}, false},
		{"hold is not a long press", config.Trigger{Kind: config.KindLongPress, ID: 3}, event.Gesture{Kind: event.HoldDetected, ID: 3, Held: 3 * time.Second}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			trigger, _ := compileTrigger(tc.trigger)
			assert.Equal(t, tc.match, trigger.MatchesGesture(tc.g))
		})
	}
}

func TestSameIDs(t *testing.T) {
	assert.True(t, sameIDs([]event.ID{1, 2, 3}, []event.ID{3, 1, 2}))
	assert.False(t, sameIDs([]event.ID{1, 2, 3}, []event.ID{3, 1, 1}))
	assert.False(t, sameIDs([]event.ID{1, 2}, []event.ID{1, 2, 3}))
	assert.True(t, sameIDs(nil, nil))

	var long, reversed []event.ID
	for i := 0; i < 20; i++ {
		long = append(long, event.ID(i))
		reversed = append([]event.ID{event.ID(i)}, reversed...)
	}
	assert.True(t, sameIDs(long, reversed))
}
