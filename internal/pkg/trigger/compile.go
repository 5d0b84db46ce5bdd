// Package trigger compiles configured mappings into per-mode lookup tables
// and matches inputs and gestures against them.
package trigger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
)

// GlobalMode is the Warning.Mode value of global mappings.
const GlobalMode = -1

var (
	ErrUnknownKind = errors.New("unknown trigger kind, replaced by inert placeholder")
	ErrOutOfRange  = errors.New("id outside of reserved range, mapping will never match")
)

// Trigger is the compiled form of config.Trigger, chord ids are kept sorted.
type Trigger struct {
	Kind        config.TriggerKind
	ID          event.ID
	IDs         []event.ID
	VelocityMin uint8
	VelocityMax uint8
	ValueMin    uint8
	PressureMin uint8
	Duration    time.Duration
	Direction   event.Direction
	BendMin     uint16
	BendMax     uint16
}

// placeholder is what unknown trigger kinds compile to.
var placeholder = Trigger{Kind: config.KindNote, ID: 0, VelocityMin: 1}

type Mapping struct {
	Trigger     Trigger
	Action      config.Action
	Description string
}

func (m *Mapping) String() string {
	if m.Description != "" {
		return fmt.Sprintf("%s (%s)", m.Action, m.Description)
	}
	return m.Action.String()
}

// Warning describes a mapping that compiled, but not the way it was written.
type Warning struct {
	Mode  int // mode id, GlobalMode for global mappings
	Index int
	Kind  config.TriggerKind
	Err   error
}

func (w Warning) Error() string {
	scope := fmt.Sprintf("mode %d", w.Mode)
	if w.Mode == GlobalMode {
		scope = "global"
	}
	return fmt.Sprintf("[%s] #%d (%s): %v", scope, w.Index, w.Kind, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Table is an immutable snapshot of compiled mappings, mode id is the index of the mode in config.
type Table struct {
	modes  [][]Mapping
	global []Mapping
}

// Compile builds a new table from cfg. It never fails, problems are reported as warnings.
func Compile(cfg config.Config) (*Table, []Warning) {
	var warnings []Warning

	t := &Table{modes: make([][]Mapping, len(cfg.Modes))}
	for i, mode := range cfg.Modes {
		t.modes[i] = compileList(i, mode.Mappings, &warnings)
	}
	t.global = compileList(GlobalMode, cfg.Global, &warnings)

	return t, warnings
}

func compileList(mode int, mappings []config.Mapping, warnings *[]Warning) []Mapping {
	var compiled = make([]Mapping, 0, len(mappings))
	for i, m := range mappings {
		trigger, err := compileTrigger(m.Trigger)
		if err != nil {
			*warnings = append(*warnings, Warning{Mode: mode, Index: i, Kind: m.Trigger.Kind, Err: err})
		}
		compiled = append(compiled, Mapping{Trigger: trigger, Action: m.Action, Description: m.Description})
	}
	return compiled
}

func compileTrigger(ct config.Trigger) (Trigger, error) {
	if !config.SupportedTriggerKinds[ct.Kind] {
		return placeholder, ErrUnknownKind
	}

	t := Trigger{
		Kind:        ct.Kind,
		ID:          ct.ID,
		VelocityMin: ct.VelocityMin,
		VelocityMax: ct.VelocityMax,
		ValueMin:    ct.ValueMin,
		PressureMin: ct.PressureMin,
		Duration:    ct.Duration,
		Direction:   ct.Direction,
		BendMin:     ct.BendMin,
		BendMax:     ct.BendMax,
	}

	if len(ct.IDs) > 0 {
		t.IDs = make([]event.ID, len(ct.IDs))
		copy(t.IDs, ct.IDs)
		sort.Slice(t.IDs, func(i, j int) bool { return t.IDs[i] < t.IDs[j] })
	}

	var inRange = true
	switch t.Kind {
	case config.KindGamepadButton:
		inRange = t.ID.IsGamepad()
	case config.KindGamepadButtonChord:
		for _, id := range t.IDs {
			inRange = inRange && id.IsGamepad()
		}
	case config.KindGamepadAnalogStick:
		inRange = t.ID.IsStickAxis()
	case config.KindGamepadTrigger:
		inRange = t.ID.IsTriggerAxis()
	}
	if !inRange {
		return t, ErrOutOfRange
	}

	return t, nil
}

// Modes returns the number of modes in the table.
func (t *Table) Modes() int {
	return len(t.modes)
}

// Mappings returns mappings of given mode, nil for unknown mode ids.
func (t *Table) Mappings(mode int) []Mapping {
	if mode < 0 || mode >= len(t.modes) {
		return nil
	}
	return t.modes[mode]
}

func (t *Table) Global() []Mapping {
	return t.global
}
