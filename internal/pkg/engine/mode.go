package engine

import (
	"fmt"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"go.uber.org/zap"
)

// Mode returns the active mode id.
func (e *Engine) Mode() int {
	return int(e.mode.Load())
}

// ModeName returns the name of the active mode, empty when no modes are configured.
func (e *Engine) ModeName() string {
	cfg := e.cfg.Load()
	mode := e.Mode()
	if cfg == nil || mode >= len(cfg.Modes) {
		return ""
	}
	return cfg.Modes[mode].Name
}

func (e *Engine) modes() int {
	cfg := e.cfg.Load()
	if cfg == nil {
		return 0
	}
	return len(cfg.Modes)
}

func (e *Engine) setMode(mode int) {
	old := e.mode.Swap(int32(mode))
	if int(old) == mode {
		return
	}
	e.metrics.ModeChange(mode)
	e.log.Info(fmt.Sprintf("mode changed to %d (%s)", mode, e.ModeName()), logger.Info)
}

func (e *Engine) SetMode(mode int) error {
	if mode < 0 || mode >= e.modes() {
		return fmt.Errorf("%w: %d", config.ErrUnknownMode, mode)
	}
	e.setMode(mode)
	return nil
}

func (e *Engine) SetModeByName(name string) error {
	cfg := e.cfg.Load()
	if cfg == nil {
		return fmt.Errorf("%w: \"%s\"", config.ErrUnknownMode, name)
	}
	mode, err := cfg.ModeIndex(name)
	if err != nil {
		return err
	}
	e.setMode(mode)
	return nil
}

// CycleMode moves the active mode by delta, wrapping around, and returns the new mode id.
func (e *Engine) CycleMode(delta int) (int, error) {
	n := e.modes()
	if n == 0 {
		return 0, ErrNoModes
	}
	mode := ((e.Mode()+delta)%n + n) % n
	e.setMode(mode)
	return mode, nil
}

// ApplyModeChange handles the value of a mode_change action: a mode name,
// config.ModeNext or config.ModePrevious.
func (e *Engine) ApplyModeChange(value string) error {
	var err error
	switch value {
	case config.ModeNext:
		_, err = e.CycleMode(1)
	case config.ModePrevious:
		_, err = e.CycleMode(-1)
	default:
		err = e.SetModeByName(value)
	}
	if err != nil {
		e.log.Info("mode change failed", zap.String("value", value), zap.Error(err), logger.Warning)
	}
	return err
}
