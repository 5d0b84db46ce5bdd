// Package metrics provides Prometheus metrics of the input processing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Match paths
const (
	PathRaw     = "raw"
	PathGesture = "gesture"
)

// Collector groups engine metrics. All methods are no-ops on a nil Collector.
type Collector struct {
	namespace string
	registry  prometheus.Registerer
	buckets   []float64

	droppedLogs func() uint64

	inputs          *prometheus.CounterVec
	gestures        *prometheus.CounterVec
	matches         *prometheus.CounterVec
	misses          prometheus.Counter
	reloads         prometheus.Counter
	compileWarnings prometheus.Counter
	modeChanges     prometheus.Counter
	activeMode      prometheus.Gauge
	handleDuration  prometheus.Histogram
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		namespace: "padmacro",
		registry:  prometheus.DefaultRegisterer,
		buckets:   []float64{.00001, .000025, .00005, .0001, .00025, .0005, .001, .005},
	}
	for _, opt := range opts {
		opt(c)
	}

	auto := promauto.With(c.registry)

	c.inputs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "inputs_total",
		Help:      "Normalized inputs processed, by input kind",
	}, []string{"kind"})
	c.gestures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "gestures_total",
		Help:      "Gestures detected, by gesture kind",
	}, []string{"kind"})
	c.matches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "matches_total",
		Help:      "Dispatched mappings, by lookup path",
	}, []string{"path"})
	c.misses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "unmapped_inputs_total",
		Help:      "Inputs which matched no mapping at all",
	})
	c.reloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "config_reloads_total",
		Help:      "Mapping table rebuilds",
	})
	c.compileWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "compile_warnings_total",
		Help:      "Warnings reported while compiling mapping tables",
	})
	c.modeChanges = auto.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "mode_changes_total",
		Help:      "Active mode switches",
	})
	c.activeMode = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      "active_mode",
		Help:      "Id of the active mode",
	})
	c.handleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      "handle_duration_seconds",
		Help:      "Time spent handling a single input, gesture detection and lookups included",
		Buckets:   c.buckets,
	})

	if c.droppedLogs != nil {
		auto.NewCounterFunc(prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      "dropped_log_entries_total",
			Help:      "Log entries lost because the console printer fell behind",
		}, func() float64 {
			return float64(c.droppedLogs())
		})
	}

	return c
}

func (c *Collector) Input(kind string) {
	if c == nil {
		return
	}
	c.inputs.WithLabelValues(kind).Inc()
}

func (c *Collector) Gesture(kind string) {
	if c == nil {
		return
	}
	c.gestures.WithLabelValues(kind).Inc()
}

// Match counts a dispatched mapping found on given path (PathRaw or PathGesture).
func (c *Collector) Match(path string) {
	if c == nil {
		return
	}
	c.matches.WithLabelValues(path).Inc()
}

func (c *Collector) Miss() {
	if c == nil {
		return
	}
	c.misses.Inc()
}

func (c *Collector) Reload(warnings int) {
	if c == nil {
		return
	}
	c.reloads.Inc()
	c.compileWarnings.Add(float64(warnings))
}

func (c *Collector) ModeChange(mode int) {
	if c == nil {
		return
	}
	c.modeChanges.Inc()
	c.activeMode.Set(float64(mode))
}

// ObserveHandle records the time elapsed since start.
func (c *Collector) ObserveHandle(start time.Time) {
	if c == nil {
		return
	}
	c.handleDuration.Observe(time.Since(start).Seconds())
}
