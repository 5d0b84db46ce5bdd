package metrics

import "github.com/prometheus/client_golang/prometheus"

type Option func(*Collector)

// WithNamespace sets the namespace of all metrics.
func WithNamespace(namespace string) Option {
	return func(c *Collector) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithRegistry registers metrics in given registry instead of the default one.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Collector) {
		if registry != nil {
			c.registry = registry
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(c *Collector) {
		if len(buckets) > 0 {
			c.buckets = buckets
		}
	}
}

// WithDroppedLogs exports the number of dropped log entries read from dropped.
func WithDroppedLogs(dropped func() uint64) Option {
	return func(c *Collector) {
		c.droppedLogs = dropped
	}
}
