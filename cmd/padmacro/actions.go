package main

import (
	"fmt"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/engine"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"go.uber.org/zap"
)

// executor applies dispatched actions. Mode changes are handled by the engine,
// everything else is reported for an external action runner.
type executor struct {
	eng *engine.Engine
}

func newExecutor(eng *engine.Engine) *executor {
	return &executor{eng: eng}
}

func (x *executor) run(matches []engine.Match) {
	for _, m := range matches {
		action := m.Mapping.Action

		if action.Type == config.ActionModeChange {
			err := x.eng.ApplyModeChange(action.Value)
			if err == nil {
				log.Info(fmt.Sprintf("mode: %s", x.eng.ModeName()), logger.Action)
			}
			continue
		}

		log.Info(fmt.Sprintf("action: %s", m.Mapping),
			zap.String("trigger", triggerOf(m)),
			zap.String("path", m.Path()),
			zap.Int("mode", x.eng.Mode()),
			logger.Action,
		)
	}
}

func triggerOf(m engine.Match) string {
	if m.Gesture != nil {
		return m.Gesture.String()
	}
	return m.Input.String()
}
