package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/midi"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape shared by YAML and TOML formats.
type fileConfig struct {
	DefaultMode string `yaml:"default_mode" toml:"default_mode"`

	Device struct {
		Name     string   `yaml:"name" toml:"name"`
		MidiPort string   `yaml:"midi_port" toml:"midi_port"`
		Gamepad  bool     `yaml:"gamepad" toml:"gamepad"`
		Deadzone *float64 `yaml:"deadzone" toml:"deadzone"`
	} `yaml:"device" toml:"device"`

	Advanced struct {
		ChordWindowMs      *int `yaml:"chord_window_ms" toml:"chord_window_ms"`
		DoubleTapTimeoutMs *int `yaml:"double_tap_timeout_ms" toml:"double_tap_timeout_ms"`
		HoldThresholdMs    *int `yaml:"hold_threshold_ms" toml:"hold_threshold_ms"`
		HoldOnce           bool `yaml:"hold_once" toml:"hold_once"`
	} `yaml:"advanced" toml:"advanced"`

	Modes []struct {
		Name     string        `yaml:"name" toml:"name"`
		Mappings []fileMapping `yaml:"mappings" toml:"mappings"`
	} `yaml:"modes" toml:"modes"`

	Global []fileMapping `yaml:"global" toml:"global"`
}

type fileMapping struct {
	Trigger fileTrigger `yaml:"trigger" toml:"trigger"`
	Action  struct {
		Type  string `yaml:"type" toml:"type"`
		Value string `yaml:"value" toml:"value"`
	} `yaml:"action" toml:"action"`
	Description string `yaml:"description" toml:"description"`
}

// fileTrigger identifiers accept numbers as well as names, e.g. note "c1" or button "south".
type fileTrigger struct {
	Type        string `yaml:"type" toml:"type"`
	Note        any    `yaml:"note" toml:"note"`
	Notes       []any  `yaml:"notes" toml:"notes"`
	Button      any    `yaml:"button" toml:"button"`
	Buttons     []any  `yaml:"buttons" toml:"buttons"`
	Axis        any    `yaml:"axis" toml:"axis"`
	CC          *int   `yaml:"cc" toml:"cc"`
	VelocityMin *int   `yaml:"velocity_min" toml:"velocity_min"`
	VelocityMax *int   `yaml:"velocity_max" toml:"velocity_max"`
	ValueMin    *int   `yaml:"value_min" toml:"value_min"`
	DurationMs  *int   `yaml:"duration_ms" toml:"duration_ms"`
	Direction   string `yaml:"direction" toml:"direction"`
	PressureMin *int   `yaml:"pressure_min" toml:"pressure_min"`
	BendMin     *int   `yaml:"bend_min" toml:"bend_min"`
	BendMax     *int   `yaml:"bend_max" toml:"bend_max"`
}

var directionFromString = map[string]event.Direction{
	"clockwise":         event.Clockwise,
	"cw":                event.Clockwise,
	"positive":          event.Clockwise,
	"counter_clockwise": event.CounterClockwise,
	"ccw":               event.CounterClockwise,
	"negative":          event.CounterClockwise,
}

func ParseYAML(data []byte) (Config, error) {
	var cfg fileConfig

	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)

	err := d.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing yaml failed: %w", err)
	}

	return cfg.convert()
}

func ParseTOML(data []byte) (Config, error) {
	var cfg fileConfig

	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()

	err := d.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parsing toml failed: %w", err)
	}

	return cfg.convert()
}

func (fc *fileConfig) convert() (Config, error) {
	var errs error

	cfg := Default()
	cfg.DefaultMode = fc.DefaultMode
	cfg.Device.Name = fc.Device.Name
	cfg.Device.MidiPort = fc.Device.MidiPort
	cfg.Device.Gamepad = fc.Device.Gamepad
	if fc.Device.Deadzone != nil {
		dz := *fc.Device.Deadzone
		if dz < 0 || dz >= 1 {
			errs = multierr.Append(errs, fmt.Errorf("device: deadzone outside of 0.0-1.0 range: %f", dz))
		}
		cfg.Device.Deadzone = dz
	}

	for _, tunable := range []struct {
		name   string
		value  *int
		target *time.Duration
	}{
		{"chord_window_ms", fc.Advanced.ChordWindowMs, &cfg.Advanced.ChordWindow},
		{"double_tap_timeout_ms", fc.Advanced.DoubleTapTimeoutMs, &cfg.Advanced.DoubleTapTimeout},
		{"hold_threshold_ms", fc.Advanced.HoldThresholdMs, &cfg.Advanced.HoldThreshold},
	} {
		if tunable.value == nil {
			continue
		}
		if *tunable.value < 0 {
			errs = multierr.Append(errs, fmt.Errorf("advanced: %s can't be negative: %d", tunable.name, *tunable.value))
			continue
		}
		*tunable.target = time.Duration(*tunable.value) * time.Millisecond
	}
	cfg.Advanced.HoldOnce = fc.Advanced.HoldOnce

	var names = make(map[string]bool)
	for i, fm := range fc.Modes {
		switch {
		case fm.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("mode #%d: name not set", i))
		case names[fm.Name]:
			errs = multierr.Append(errs, fmt.Errorf("mode \"%s\": defined more than once", fm.Name))
		}
		names[fm.Name] = true
	}

	convertAll := func(scope string, raw []fileMapping) []Mapping {
		var mappings = make([]Mapping, 0, len(raw))
		for j, fm := range raw {
			m, err := fm.convert(names)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("[%s] #%d: %w", scope, j, err))
				continue
			}
			mappings = append(mappings, m)
		}
		return mappings
	}

	for i, fm := range fc.Modes {
		scope := fm.Name
		if scope == "" {
			scope = fmt.Sprintf("#%d", i)
		}
		cfg.Modes = append(cfg.Modes, Mode{Name: fm.Name, Mappings: convertAll(scope, fm.Mappings)})
	}
	if len(fc.Global) > 0 {
		cfg.Global = convertAll("global", fc.Global)
	}

	if cfg.DefaultMode != "" && !names[cfg.DefaultMode] {
		errs = multierr.Append(errs, fmt.Errorf("default_mode: %w: \"%s\"", ErrUnknownMode, cfg.DefaultMode))
	}

	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

func (fm *fileMapping) convert(modes map[string]bool) (Mapping, error) {
	trigger, err := fm.Trigger.convert()
	if err != nil {
		return Mapping{}, err
	}

	actionType := ActionType(strings.ToLower(fm.Action.Type))
	if !SupportedActionTypes[actionType] {
		return Mapping{}, fmt.Errorf("action type not supported: \"%s\"", fm.Action.Type)
	}
	switch actionType {
	case ActionDelay:
		ms, err := strconv.Atoi(fm.Action.Value)
		if err != nil || ms < 0 {
			return Mapping{}, fmt.Errorf("delay action requires non-negative milliseconds, got \"%s\"", fm.Action.Value)
		}
	case ActionModeChange:
		switch fm.Action.Value {
		case ModeNext, ModePrevious:
		default:
			if !modes[fm.Action.Value] {
				return Mapping{}, fmt.Errorf("mode_change target: %w: \"%s\"", ErrUnknownMode, fm.Action.Value)
			}
		}
	}

	return Mapping{
		Trigger:     trigger,
		Action:      Action{Type: actionType, Value: fm.Action.Value},
		Description: fm.Description,
	}, nil
}

func (ft *fileTrigger) convert() (Trigger, error) {
	kind := TriggerKind(strings.ToLower(ft.Type))
	t := Trigger{Kind: kind}

	var err error
	switch kind {
	case KindNote:
		if t.ID, err = parseNote(ft.Note); err != nil {
			return t, err
		}
		if t.VelocityMin, err = optionalRange("velocity_min", ft.VelocityMin, 0, 127, 0); err != nil {
			return t, err
		}

	case KindVelocityRange:
		if t.ID, err = parseNote(ft.Note); err != nil {
			return t, err
		}
		if t.VelocityMin, err = optionalRange("velocity_min", ft.VelocityMin, 0, 127, 0); err != nil {
			return t, err
		}
		if t.VelocityMax, err = optionalRange("velocity_max", ft.VelocityMax, 0, 127, 127); err != nil {
			return t, err
		}
		if t.VelocityMin > t.VelocityMax {
			return t, fmt.Errorf("velocity_min %d greater than velocity_max %d", t.VelocityMin, t.VelocityMax)
		}

	case KindLongPress, KindDoubleTap:
		if t.ID, err = parseNoteOrButton(ft.Note, ft.Button); err != nil {
			return t, err
		}
		if ft.DurationMs != nil {
			if kind != KindLongPress {
				return t, fmt.Errorf("duration_ms is not supported by %s", kind)
			}
			if *ft.DurationMs < 0 {
				return t, fmt.Errorf("duration_ms can't be negative: %d", *ft.DurationMs)
			}
			t.Duration = time.Duration(*ft.DurationMs) * time.Millisecond
		}

	case KindNoteChord:
		if len(ft.Notes) < 2 {
			return t, fmt.Errorf("chord requires at least 2 notes, got %d", len(ft.Notes))
		}
		for _, raw := range ft.Notes {
			id, err := parseNote(raw)
			if err != nil {
				return t, err
			}
			t.IDs = append(t.IDs, id)
		}

	case KindEncoderTurn:
		if t.ID, err = requiredRange("cc", ft.CC, 0, 127); err != nil {
			return t, err
		}
		if t.Direction, err = parseDirection(ft.Direction); err != nil {
			return t, err
		}

	case KindAftertouch:
		if t.PressureMin, err = optionalRange("pressure_min", ft.PressureMin, 0, 127, 0); err != nil {
			return t, err
		}

	case KindPitchBend:
		var bendMin, bendMax int = 0, int(MaxPitchBend)
		if ft.BendMin != nil {
			bendMin = *ft.BendMin
		}
		if ft.BendMax != nil {
			bendMax = *ft.BendMax
		}
		if bendMin < 0 || bendMax > int(MaxPitchBend) || bendMin > bendMax {
			return t, fmt.Errorf("invalid bend range %d-%d, expected values within 0-%d", bendMin, bendMax, MaxPitchBend)
		}
		t.BendMin, t.BendMax = uint16(bendMin), uint16(bendMax)

	case KindCC:
		if t.ID, err = requiredRange("cc", ft.CC, 0, 127); err != nil {
			return t, err
		}
		if t.ValueMin, err = optionalRange("value_min", ft.ValueMin, 0, 127, 0); err != nil {
			return t, err
		}

	case KindGamepadButton:
		if t.ID, err = parseButton(ft.Button); err != nil {
			return t, err
		}

	case KindGamepadButtonChord:
		if len(ft.Buttons) < 2 {
			return t, fmt.Errorf("chord requires at least 2 buttons, got %d", len(ft.Buttons))
		}
		for _, raw := range ft.Buttons {
			id, err := parseButton(raw)
			if err != nil {
				return t, err
			}
			t.IDs = append(t.IDs, id)
		}

	case KindGamepadAnalogStick:
		if t.ID, err = parseAxis(ft.Axis); err != nil {
			return t, err
		}
		if !t.ID.IsStickAxis() {
			return t, fmt.Errorf("axis \"%v\" is not an analog stick axis", ft.Axis)
		}
		if t.Direction, err = parseDirection(ft.Direction); err != nil {
			return t, err
		}

	case KindGamepadTrigger:
		if t.ID, err = parseAxis(ft.Axis); err != nil {
			return t, err
		}
		if !t.ID.IsTriggerAxis() {
			return t, fmt.Errorf("axis \"%v\" is not an analog trigger", ft.Axis)
		}
		if t.ValueMin, err = optionalRange("value_min", ft.ValueMin, 0, 127, 0); err != nil {
			return t, err
		}

	default:
		return t, fmt.Errorf("%w: \"%s\"", ErrUnsupportedTrigger, ft.Type)
	}

	return t, nil
}

// toInt accepts integers decoded by yaml (int) and toml (int64), and whole floats.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func parseNote(v any) (event.ID, error) {
	if v == nil {
		return 0, errors.New("note not set")
	}

	n, ok := toInt(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return 0, fmt.Errorf("unsupported note value: %v", v)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			note, err := midi.StringToNote(s)
			if err != nil {
				return 0, fmt.Errorf("failed to parse note: %w", err)
			}
			return event.ID(note), nil
		}
		return noteInRange(n)
	}
	return noteInRange(n)
}

func noteInRange(n int) (event.ID, error) {
	if n < 0 || n > int(event.MaxMidiID) {
		return 0, fmt.Errorf("note value outside of 0-127 range: %d", n)
	}
	return event.ID(n), nil
}

func parseButton(v any) (event.ID, error) {
	if v == nil {
		return 0, errors.New("button not set")
	}

	if s, ok := v.(string); ok {
		b, ok := gamepad.ButtonFromString[strings.ToLower(s)]
		if ok {
			return b.ID(), nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("button name \"%s\" not found / not supported", s)
		}
		v = n
	}

	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("unsupported button value: %v", v)
	}
	if n < int(event.MinGamepadID) || n >= int(event.UnknownID) {
		return 0, fmt.Errorf("button value outside of %d-%d range: %d", event.MinGamepadID, event.UnknownID-1, n)
	}
	return event.ID(n), nil
}

func parseAxis(v any) (event.ID, error) {
	if v == nil {
		return 0, errors.New("axis not set")
	}

	if s, ok := v.(string); ok {
		a, ok := gamepad.AxisFromString[strings.ToLower(s)]
		if ok {
			return a.ID(), nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("axis name \"%s\" not found / not supported", s)
		}
		v = n
	}

	n, ok := toInt(v)
	if !ok || n < 0 || n > 255 {
		return 0, fmt.Errorf("unsupported axis value: %v", v)
	}
	return event.ID(n), nil
}

func parseNoteOrButton(note, button any) (event.ID, error) {
	switch {
	case note != nil && button != nil:
		return 0, errors.New("note and button are mutually exclusive")
	case button != nil:
		return parseButton(button)
	default:
		return parseNote(note)
	}
}

func parseDirection(s string) (event.Direction, error) {
	if s == "" {
		return event.NoDirection, nil
	}
	d, ok := directionFromString[strings.ToLower(s)]
	if !ok {
		return event.NoDirection, fmt.Errorf("unsupported direction: \"%s\"", s)
	}
	return d, nil
}

func requiredRange(name string, v *int, min, max int) (event.ID, error) {
	if v == nil {
		return 0, fmt.Errorf("%s not set", name)
	}
	if *v < min || *v > max {
		return 0, fmt.Errorf("%s value outside of %d-%d range: %d", name, min, max, *v)
	}
	return event.ID(*v), nil
}

func optionalRange(name string, v *int, min, max int, fallback uint8) (uint8, error) {
	if v == nil {
		return fallback, nil
	}
	if *v < min || *v > max {
		return 0, fmt.Errorf("%s value outside of %d-%d range: %d", name, min, max, *v)
	}
	return uint8(*v), nil
}
