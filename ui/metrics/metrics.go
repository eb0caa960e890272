// Package metrics provides event loop metrics collection.
// It wraps Prometheus collectors to provide structured telemetry for
// event dispatch, render passes, reconciliation, the measurement
// feedback loop and live tree mutations.
//
// All Record methods are safe to call on a nil *Collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Event results.
const (
	ResultHandled   = "handled"   // transition produced a new state
	ResultUnchanged = "unchanged" // transition returned the same state
	ResultKernel    = "kernel"    // handled by the loop itself
	ResultUnknown   = "unknown"   // no handler for the reason
	ResultError     = "error"     // render failed
)

// Collector provides event loop metrics collection.
type Collector struct {
	registry *prometheus.Registry

	// Event metrics
	eventsTotal *prometheus.CounterVec
	queueDepth  prometheus.Gauge
	busy        prometheus.Gauge

	// Render metrics
	renderLatency *prometheus.HistogramVec
	renderErrors  prometheus.Counter

	// Reconcile metrics
	reconcileLatency prometheus.Histogram
	domOps           *prometheus.CounterVec

	// Measurement metrics
	measurePasses *prometheus.CounterVec
	measureLimit  prometheus.Counter

	// Session metrics
	sessions      prometheus.Gauge
	inputsDropped prometheus.Counter
}

// NewCollector creates a new loop metrics collector.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "lensui"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	// Event metrics
	c.eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "events_total",
			Help:      "Total number of dispatched events",
		},
		[]string{"reason", "result"},
	)

	c.queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "queue_depth",
			Help:      "Number of posted events waiting to be dispatched",
		},
	)

	c.busy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loop",
			Name:      "busy",
			Help:      "Whether a render pass is in progress (0=idle, 1=rendering)",
		},
	)

	// Render metrics
	c.renderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time taken to expand a description into a tree",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100us to ~3s
		},
		[]string{"result"},
	)

	c.renderErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "errors_total",
			Help:      "Total number of failed render passes",
		},
	)

	// Reconcile metrics
	c.reconcileLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Time taken to patch the live tree",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~800ms
		},
	)

	c.domOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dom",
			Name:      "operations_total",
			Help:      "Total number of live tree operations",
		},
		[]string{"op"},
	)

	// Measurement metrics
	c.measurePasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "measure",
			Name:      "passes_total",
			Help:      "Total number of measurement samplings",
		},
		[]string{"changed"},
	)

	c.measureLimit = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "measure",
			Name:      "limit_exceeded_total",
			Help:      "Total number of feedback loops stopped by the pass limit",
		},
	)

	c.sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of running sessions",
		},
	)

	c.inputsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "inputs_dropped_total",
			Help:      "Total number of inputs dropped by rate limiting",
		},
	)

	// Register all collectors
	c.registry.MustRegister(
		c.eventsTotal,
		c.queueDepth,
		c.busy,
		c.renderLatency,
		c.renderErrors,
		c.reconcileLatency,
		c.domOps,
		c.measurePasses,
		c.measureLimit,
		c.sessions,
		c.inputsDropped,
	)

	return c
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordEvent counts one dispatched event.
func (c *Collector) RecordEvent(reason, result string) {
	if c == nil {
		return
	}
	c.eventsTotal.WithLabelValues(reason, result).Inc()
}

// RecordQueueDepth records the number of waiting events.
func (c *Collector) RecordQueueDepth(depth int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(depth))
}

// RecordBusy records whether a render pass is in progress.
func (c *Collector) RecordBusy(busy bool) {
	if c == nil {
		return
	}
	v := 0.0
	if busy {
		v = 1
	}
	c.busy.Set(v)
}

// RecordRender records render latency.
func (c *Collector) RecordRender(duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.renderLatency.WithLabelValues(result).Observe(duration.Seconds())
	if err != nil {
		c.renderErrors.Inc()
	}
}

// RecordReconcile records reconcile latency.
func (c *Collector) RecordReconcile(duration time.Duration) {
	if c == nil {
		return
	}
	c.reconcileLatency.Observe(duration.Seconds())
}

// RecordDOMOp counts one live tree operation.
func (c *Collector) RecordDOMOp(op string) {
	if c == nil {
		return
	}
	c.domOps.WithLabelValues(op).Inc()
}

// RecordMeasurePass counts one measurement sampling.
func (c *Collector) RecordMeasurePass(changed bool) {
	if c == nil {
		return
	}
	label := "false"
	if changed {
		label = "true"
	}
	c.measurePasses.WithLabelValues(label).Inc()
}

// RecordMeasureLimit counts a feedback loop stopped by the pass limit.
func (c *Collector) RecordMeasureLimit() {
	if c == nil {
		return
	}
	c.measureLimit.Inc()
}

// RecordSession records a session starting (delta 1) or ending (-1).
func (c *Collector) RecordSession(delta int) {
	if c == nil {
		return
	}
	c.sessions.Add(float64(delta))
}

// RecordInputDropped counts an input dropped by rate limiting.
func (c *Collector) RecordInputDropped() {
	if c == nil {
		return
	}
	c.inputsDropped.Inc()
}
