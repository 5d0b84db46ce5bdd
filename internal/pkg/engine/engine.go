// Package engine ties the input pipeline together: normalization, gesture
// detection and mapping lookup in the active mode.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/gesture"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/gethiox/padmacro/internal/pkg/metrics"
	"github.com/gethiox/padmacro/internal/pkg/midi"
	"github.com/gethiox/padmacro/internal/pkg/normalize"
	"github.com/gethiox/padmacro/internal/pkg/trigger"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var ErrNoModes = errors.New("no modes configured")

// Match is a mapping selected for an input, Gesture is nil for matches of the raw input.
type Match struct {
	Mapping *trigger.Mapping
	Input   event.Input
	Gesture *event.Gesture
}

func (m Match) Path() string {
	if m.Gesture == nil {
		return metrics.PathRaw
	}
	return metrics.PathGesture
}

func (m Match) String() string {
	if m.Gesture == nil {
		return fmt.Sprintf("%s -> %s", m.Input, m.Mapping)
	}
	return fmt.Sprintf("%s -> %s", m.Gesture, m.Mapping)
}

// Engine is safe for concurrent use. Inputs are expected in chronological order.
type Engine struct {
	session    *gesture.Session
	dispatcher *trigger.Dispatcher
	cfg        atomic.Pointer[config.Config]
	mode       atomic.Int32
	deadzone   atomic.Float64

	devicesMutex sync.Mutex
	devices      map[*Device]struct{}

	log     *zap.Logger
	metrics *metrics.Collector
}

// New creates an engine with cfg loaded, the active mode is the configured default.
// Compile warnings are logged.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		dispatcher: trigger.NewDispatcher(),
		devices:    make(map[*Device]struct{}),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.session = gesture.NewSession(detectorConfig(cfg.Advanced), e.log)
	e.LoadConfig(cfg)
	e.mode.Store(int32(cfg.DefaultModeIndex()))
	e.metrics.ModeChange(cfg.DefaultModeIndex())

	return e
}

func detectorConfig(adv config.Advanced) gesture.Config {
	cfg := gesture.DefaultConfig()
	if adv.ChordWindow > 0 {
		cfg.ChordWindow = adv.ChordWindow
	}
	if adv.DoubleTapTimeout > 0 {
		cfg.DoubleTapTimeout = adv.DoubleTapTimeout
	}
	if adv.HoldThreshold > 0 {
		cfg.HoldThreshold = adv.HoldThreshold
	}
	cfg.HoldOnce = adv.HoldOnce
	return cfg
}

// deadzoneOf returns the configured analog deadzone, zero means the default one.
func deadzoneOf(dev config.Device) float64 {
	if dev.Deadzone <= 0 {
		return normalize.DefaultDeadzone
	}
	return dev.Deadzone
}

// LoadConfig rebuilds the mapping table and swaps it in one step, detector
// tunables are updated as well. Active mode is kept when it still exists.
func (e *Engine) LoadConfig(cfg config.Config) []trigger.Warning {
	warnings := e.dispatcher.Load(cfg)
	for _, w := range warnings {
		e.log.Info(fmt.Sprintf("mapping compiled with warning: %s", w.Error()), logger.Warning)
	}

	stored := cfg
	e.cfg.Store(&stored)
	e.deadzone.Store(deadzoneOf(cfg.Device))

	detector := detectorConfig(cfg.Advanced)
	e.session.SetConfig(detector)
	e.devicesMutex.Lock()
	for d := range e.devices {
		d.session.SetConfig(detector)
	}
	e.devicesMutex.Unlock()

	if int(e.mode.Load()) >= len(cfg.Modes) {
		e.setMode(cfg.DefaultModeIndex())
	}

	e.metrics.Reload(len(warnings))
	e.log.Info("mapping table loaded",
		zap.Int("modes", len(cfg.Modes)),
		zap.Int("global", len(cfg.Global)),
		zap.Int("warnings", len(warnings)),
		logger.Debug,
	)
	return warnings
}

// Config returns the configuration loaded last.
func (e *Engine) Config() config.Config {
	cfg := e.cfg.Load()
	if cfg == nil {
		return config.Config{}
	}
	return *cfg
}

// Process normalizes a MIDI event and runs it through gesture detection.
func (e *Engine) Process(ev midi.Event) []event.Gesture {
	return e.ProcessInput(normalize.Normalize(ev))
}

func (e *Engine) ProcessInput(in event.Input) []event.Gesture {
	return e.session.Process(in)
}

func (e *Engine) PollHolds(now time.Time) []event.Gesture {
	return e.session.PollHolds(now)
}

func (e *Engine) MatchRaw(in event.Input, mode int) *trigger.Mapping {
	return e.dispatcher.MatchRaw(in, mode)
}

func (e *Engine) MatchGesture(g event.Gesture, mode int) *trigger.Mapping {
	return e.dispatcher.MatchGesture(g, mode)
}

// Handle runs one input through the whole pipeline in the active mode and returns
// matched mappings in order: the raw input match first, then gesture matches.
// A mapping matched by both the raw input and one of its gestures is reported once.
func (e *Engine) Handle(in event.Input) []Match {
	return e.handle(e.session, in)
}

func (e *Engine) handle(session *gesture.Session, in event.Input) []Match {
	start := time.Now()
	defer e.metrics.ObserveHandle(start)

	e.metrics.Input(in.Kind.String())

	mode := e.Mode()
	table := e.dispatcher.Table()

	var matches []Match
	if m := table.MatchRaw(in, mode); m != nil {
		matches = append(matches, Match{Mapping: m, Input: in})
		e.metrics.Match(metrics.PathRaw)
	}

	gestures := session.Process(in)
	matches = e.matchGestures(table, mode, in, gestures, matches)

	if len(matches) == 0 {
		e.metrics.Miss()
		level := logger.Unmapped
		if in.Kind == event.InputEncoderTurned && in.ID.IsGamepad() {
			level = logger.Analog
		}
		e.log.Info(in.String(), zap.Int("mode", mode), level)
	}
	return matches
}

// HandleMidi is Handle for a MIDI event.
func (e *Engine) HandleMidi(ev midi.Event) []Match {
	return e.Handle(normalize.Normalize(ev))
}

// HandleGamepad normalizes a gamepad event with the configured deadzone and
// handles it. Unsupported event kinds are dropped.
func (e *Engine) HandleGamepad(ev gamepad.Event) []Match {
	return e.handleGamepad(e.session, ev)
}

func (e *Engine) handleGamepad(session *gesture.Session, ev gamepad.Event) []Match {
	in, ok := normalize.Gamepad(ev, e.deadzone.Load())
	if !ok {
		return nil
	}
	return e.handle(session, in)
}

// HandleHolds polls for holds and matches them in the active mode.
func (e *Engine) HandleHolds(now time.Time) []Match {
	return e.handleHolds(e.session, now)
}

func (e *Engine) handleHolds(session *gesture.Session, now time.Time) []Match {
	gestures := session.PollHolds(now)
	if len(gestures) == 0 {
		return nil
	}
	return e.matchGestures(e.dispatcher.Table(), e.Mode(), event.Input{}, gestures, nil)
}

func (e *Engine) matchGestures(table *trigger.Table, mode int, in event.Input, gestures []event.Gesture, matches []Match) []Match {
	for i := range gestures {
		g := gestures[i]
		e.metrics.Gesture(g.Kind.String())
		level := logger.Gesture
		if g.Kind == event.EncoderTurned && g.ID.IsGamepad() {
			level = logger.Analog
		}
		e.log.Info(g.String(), level)

		m := table.MatchGesture(g, mode)
		if m == nil || contains(matches, m) {
			continue
		}
		matches = append(matches, Match{Mapping: m, Input: in, Gesture: &g})
		e.metrics.Match(metrics.PathGesture)
	}
	return matches
}

func contains(matches []Match, m *trigger.Mapping) bool {
	for _, match := range matches {
		if match.Mapping == m {
			return true
		}
	}
	return false
}

// RunHoldPoller polls holds every interval until ctx is done, matches are handed
// to sink. Caller is responsible for wg.Add.
func (e *Engine) RunHoldPoller(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, sink func([]Match)) {
	e.runHoldPoller(ctx, wg, e.session, interval, sink)
}

func (e *Engine) runHoldPoller(ctx context.Context, wg *sync.WaitGroup, session *gesture.Session, interval time.Duration, sink func([]Match)) {
	session.RunHoldPoller(ctx, wg, interval, func(gestures []event.Gesture) {
		matches := e.matchGestures(e.dispatcher.Table(), e.Mode(), event.Input{}, gestures, nil)
		if len(matches) > 0 {
			sink(matches)
		}
	})
}

// Reset forgets detector state of the engine's own session.
func (e *Engine) Reset() {
	e.session.Reset()
}

func (e *Engine) SessionID() string {
	return e.session.ID().String()
}
