package engine

import (
	"github.com/gethiox/padmacro/internal/pkg/metrics"
	"go.uber.org/zap"
)

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}
