package trigger

import (
	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/event"
	"go.uber.org/atomic"
)

// Dispatcher holds the current table, lookups always see one complete snapshot.
// It is safe for concurrent use, the zero value matches nothing.
type Dispatcher struct {
	table atomic.Pointer[Table]
}

// NewDispatcher creates a dispatcher with an empty table.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	d.table.Store(&Table{})
	return d
}

// Load compiles cfg and replaces the current table with the result.
func (d *Dispatcher) Load(cfg config.Config) []Warning {
	t, warnings := Compile(cfg)
	d.table.Store(t)
	return warnings
}

// Swap replaces the current table and returns the previous one.
func (d *Dispatcher) Swap(t *Table) *Table {
	return d.table.Swap(t)
}

func (d *Dispatcher) Table() *Table {
	return d.table.Load()
}

func (d *Dispatcher) MatchRaw(in event.Input, mode int) *Mapping {
	t := d.table.Load()
	if t == nil {
		return nil
	}
	return t.MatchRaw(in, mode)
}

func (d *Dispatcher) MatchGesture(g event.Gesture, mode int) *Mapping {
	t := d.table.Load()
	if t == nil {
		return nil
	}
	return t.MatchGesture(g, mode)
}
