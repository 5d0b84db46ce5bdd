package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/metrics"
	"github.com/gethiox/padmacro/internal/pkg/midi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	actionA    = config.Action{Type: config.ActionKeystroke, Value: "a"}
	actionB    = config.Action{Type: config.ActionKeystroke, Value: "b"}
	actionLong = config.Action{Type: config.ActionShell, Value: "long"}
	actionPad  = config.Action{Type: config.ActionText, Value: "pad"}
	actionNext = config.Action{Type: config.ActionModeChange, Value: config.ModeNext}
)

var t0 = time.Unix(1000, 0)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func noteOn(note uint8, velocity uint16, t time.Time) midi.Event {
	return midi.Event{Kind: midi.NoteOn, Key: note, Value: velocity, Time: t}
}

func noteOff(note uint8, t time.Time) midi.Event {
	return midi.Event{Kind: midi.NoteOff, Key: note, Time: t}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Modes = []config.Mode{
		{
			Name: "default",
			Mappings: []config.Mapping{
				{Trigger: config.Trigger{Kind: config.KindNote, ID: 36}, Action: actionA},
				{Trigger: config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{1, 5, 9}}, Action: actionB},
				{Trigger: config.Trigger{Kind: config.KindLongPress, ID: 40, Duration: time.Second}, Action: actionLong},
			},
		},
		{
			Name: "second",
			Mappings: []config.Mapping{
				{Trigger: config.Trigger{Kind: config.KindGamepadButton, ID: event.ID(gamepad.South)}, Action: actionPad},
			},
		},
	}
	cfg.Global = []config.Mapping{
		{Trigger: config.Trigger{Kind: config.KindNote, ID: 48}, Action: actionNext},
	}
	return cfg
}

func actions(matches []Match) []config.Action {
	var result []config.Action
	for _, m := range matches {
		result = append(result, m.Mapping.Action)
	}
	return result
}

func TestNoteScenario(t *testing.T) {
	e := New(testConfig())

	matches := e.HandleMidi(noteOn(36, 64, at(0)))
	require.Len(t, matches, 1, "raw and gesture match of the same mapping are reported once")
	assert.Equal(t, actionA, matches[0].Mapping.Action)
	assert.Equal(t, metrics.PathRaw, matches[0].Path())

	assert.Empty(t, e.HandleMidi(noteOn(127, 64, at(10))))

	in := event.Input{Kind: event.InputPadPressed, ID: 36, Value: 64}
	require.NotNil(t, e.MatchRaw(in, 0))
	assert.Equal(t, actionA, e.MatchRaw(in, 0).Action)
}

func TestThreeNoteChordScenario(t *testing.T) {
	e := New(testConfig())

	assert.Empty(t, e.HandleMidi(noteOn(1, 90, at(0))))
	assert.Empty(t, e.HandleMidi(noteOn(5, 90, at(10))))

	matches := e.HandleMidi(noteOn(9, 90, at(20)))
	require.Len(t, matches, 1)
	assert.Equal(t, actionB, matches[0].Mapping.Action)
	require.NotNil(t, matches[0].Gesture)
	assert.Equal(t, event.ChordDetected, matches[0].Gesture.Kind)
	assert.Equal(t, []event.ID{1, 5, 9}, matches[0].Gesture.IDs)
	assert.Equal(t, metrics.PathGesture, matches[0].Path())
}

func TestChordExactness(t *testing.T) {
	cfg := config.Default()
	cfg.Modes = []config.Mode{{Name: "default", Mappings: []config.Mapping{
		{Trigger: config.Trigger{Kind: config.KindNoteChord, IDs: []event.ID{1, 5}}, Action: actionA},
	}}}
	e := New(cfg)

	e.HandleMidi(noteOn(1, 90, at(0)))
	assert.Equal(t, []config.Action{actionA}, actions(e.HandleMidi(noteOn(5, 90, at(10)))))
	assert.Empty(t, e.HandleMidi(noteOn(9, 90, at(20))), "{1, 5, 9} is not {1, 5}")
}

func TestProcessReturnsGestures(t *testing.T) {
	e := New(testConfig())

	gestures := e.Process(noteOn(40, 100, at(0)))
	require.Len(t, gestures, 1)
	assert.Equal(t, event.PadPressed, gestures[0].Kind)
	assert.Equal(t, event.Hard, gestures[0].Level)

	gestures = e.Process(noteOff(40, at(1500)))
	require.Len(t, gestures, 2)
	assert.Equal(t, event.PadReleased, gestures[0].Kind)
	assert.Equal(t, event.LongPress, gestures[1].Kind)

	gestures = e.ProcessInput(event.Input{Kind: event.InputEncoderTurned, ID: 7, Value: 10, Time: at(2000)})
	assert.Empty(t, gestures)
	gestures = e.ProcessInput(event.Input{Kind: event.InputEncoderTurned, ID: 7, Value: 10, Time: at(2010)})
	assert.Empty(t, gestures)
}

func TestLongPressDispatch(t *testing.T) {
	e := New(testConfig())

	assert.Empty(t, e.HandleMidi(noteOn(40, 100, at(0))))
	assert.Empty(t, e.HandleMidi(noteOff(40, at(999))))

	assert.Empty(t, e.HandleMidi(noteOn(40, 100, at(5000))))
	matches := e.HandleMidi(noteOff(40, at(6200)))
	assert.Equal(t, []config.Action{actionLong}, actions(matches))
}

func TestPollHolds(t *testing.T) {
	e := New(testConfig())

	e.HandleMidi(noteOn(40, 100, at(0)))
	assert.Empty(t, e.PollHolds(at(1999)))

	gestures := e.PollHolds(at(2000))
	require.Len(t, gestures, 1)
	assert.Equal(t, event.HoldDetected, gestures[0].Kind)
	assert.Len(t, e.PollHolds(at(2100)), 1, "level triggered by default")

	cfg := testConfig()
	cfg.Advanced.HoldOnce = true
	e.LoadConfig(cfg)
	assert.Empty(t, e.PollHolds(at(2200)), "already reported")

	e.HandleMidi(noteOn(41, 100, at(3000)))
	gestures = e.PollHolds(at(5000))
	require.Len(t, gestures, 1)
	assert.Equal(t, event.ID(41), gestures[0].ID)
	assert.Empty(t, e.PollHolds(at(5100)))

	e.HandleMidi(noteOff(41, at(5200)))
	e.HandleMidi(noteOn(41, 100, at(6000)))
	assert.Len(t, e.PollHolds(at(8000)), 1, "reported again after release")
	assert.Empty(t, e.HandleHolds(at(9000)))
}

func TestModeGlobalAsymmetry(t *testing.T) {
	e := New(testConfig())

	in := event.Input{Kind: event.InputPadPressed, ID: 48, Value: 100}
	g := event.Gesture{Kind: event.PadPressed, ID: 48, Velocity: 100}

	assert.Nil(t, e.MatchRaw(in, 0))
	require.NotNil(t, e.MatchGesture(g, 0))
	assert.Equal(t, actionNext, e.MatchGesture(g, 0).Action)
	require.NotNil(t, e.MatchRaw(in, 5))

	// Handle picks up the global mapping through the gesture path
	matches := e.HandleMidi(noteOn(48, 100, at(0)))
	assert.Equal(t, []config.Action{actionNext}, actions(matches))
	assert.Equal(t, metrics.PathGesture, matches[0].Path())
}

func TestModes(t *testing.T) {
	e := New(testConfig())
	assert.Equal(t, 0, e.Mode())
	assert.Equal(t, "default", e.ModeName())

	mode, err := e.CycleMode(1)
	require.NoError(t, err)
	assert.Equal(t, 1, mode)
	assert.Equal(t, "second", e.ModeName())

	mode, err = e.CycleMode(1)
	require.NoError(t, err)
	assert.Equal(t, 0, mode)

	mode, err = e.CycleMode(-3)
	require.NoError(t, err)
	assert.Equal(t, 1, mode)

	require.NoError(t, e.SetModeByName("default"))
	assert.Equal(t, 0, e.Mode())

	assert.True(t, errors.Is(e.SetModeByName("missing"), config.ErrUnknownMode))
	assert.True(t, errors.Is(e.SetMode(2), config.ErrUnknownMode))
	assert.True(t, errors.Is(e.SetMode(-1), config.ErrUnknownMode))
	assert.Equal(t, 0, e.Mode())

	require.NoError(t, e.ApplyModeChange(config.ModeNext))
	assert.Equal(t, 1, e.Mode())
	require.NoError(t, e.ApplyModeChange(config.ModePrevious))
	assert.Equal(t, 0, e.Mode())
	require.NoError(t, e.ApplyModeChange("second"))
	assert.Equal(t, 1, e.Mode())
	assert.Error(t, e.ApplyModeChange("third"))
}

func TestNoModes(t *testing.T) {
	e := New(config.Default())
	_, err := e.CycleMode(1)
	assert.ErrorIs(t, err, ErrNoModes)
	assert.Equal(t, "", e.ModeName())
}

func TestDefaultMode(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultMode = "second"
	e := New(cfg)
	assert.Equal(t, 1, e.Mode())

	matches := e.HandleGamepad(gamepad.Event{Kind: gamepad.ButtonDown, Button: gamepad.South, Time: at(0)})
	assert.Equal(t, []config.Action{actionPad}, actions(matches))
	assert.Empty(t, e.HandleGamepad(gamepad.Event{Kind: gamepad.ButtonUp, Button: gamepad.South, Time: at(50)}))
	assert.Empty(t, e.HandleGamepad(gamepad.Event{}))
}

func TestReloadKeepsOrResetsMode(t *testing.T) {
	e := New(testConfig())
	require.NoError(t, e.SetMode(1))

	e.LoadConfig(testConfig())
	assert.Equal(t, 1, e.Mode(), "mode kept when still present")

	cfg := testConfig()
	cfg.Modes = cfg.Modes[:1]
	e.LoadConfig(cfg)
	assert.Equal(t, 0, e.Mode())
}

func TestLoadConfigSwapsMappings(t *testing.T) {
	e := New(testConfig())
	assert.NotEmpty(t, e.HandleMidi(noteOn(36, 64, at(0))))

	cfg := testConfig()
	cfg.Modes[0].Mappings = []config.Mapping{
		{Trigger: config.Trigger{Kind: config.KindNote, ID: 37}, Action: actionB},
		{Trigger: config.Trigger{Kind: "unsupported", ID: 37}, Action: actionB},
	}
	warnings := e.LoadConfig(cfg)
	require.Len(t, warnings, 1)

	assert.Empty(t, e.HandleMidi(noteOn(36, 64, at(100))))
	assert.Equal(t, []config.Action{actionB}, actions(e.HandleMidi(noteOn(37, 64, at(200)))))
}

func TestReloadUpdatesDetector(t *testing.T) {
	e := New(testConfig())

	cfg := testConfig()
	cfg.Advanced.ChordWindow = 5 * time.Millisecond
	e.LoadConfig(cfg)

	e.HandleMidi(noteOn(1, 90, at(0)))
	e.HandleMidi(noteOn(5, 90, at(10)))
	assert.Empty(t, e.HandleMidi(noteOn(9, 90, at(20))), "presses are outside of the chord window")
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(metrics.WithRegistry(registry))

	e := New(testConfig(), WithMetrics(collector))
	e.HandleMidi(noteOn(36, 64, at(0)))
	e.HandleMidi(noteOn(100, 64, at(100)))
	e.LoadConfig(testConfig())

	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if m.GetCounter() != nil {
				values[f.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["padmacro_inputs_total"])
	assert.Equal(t, 2.0, values["padmacro_gestures_total"])
	assert.Equal(t, 1.0, values["padmacro_matches_total"])
	assert.Equal(t, 1.0, values["padmacro_unmapped_inputs_total"])
	assert.Equal(t, 2.0, values["padmacro_config_reloads_total"])

	count, err := testutil.GatherAndCount(registry, "padmacro_handle_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunHoldPoller(t *testing.T) {
	cfg := testConfig()
	cfg.Advanced.HoldThreshold = time.Millisecond
	cfg.Global = append(cfg.Global, config.Mapping{
		Trigger: config.Trigger{Kind: config.KindNote, ID: 60}, Action: actionA,
	})
	e := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	wg.Add(1)
	go e.RunHoldPoller(ctx, &wg, time.Millisecond, func(matches []Match) {
		t.Errorf("hold gestures have no mappings, got %v", matches)
	})

	e.HandleMidi(noteOn(60, 100, time.Now()))
	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()
}

func TestConcurrentHandleAndReload(t *testing.T) {
	e := New(testConfig())

	wg := sync.WaitGroup{}
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			e.HandleMidi(noteOn(36, 64, at(i)))
			e.HandleMidi(noteOff(36, at(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			e.PollHolds(at(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.LoadConfig(testConfig())
			_, _ = e.CycleMode(1)
		}
	}()
	wg.Wait()
}
