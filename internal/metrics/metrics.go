// Package metrics exposes Prometheus counters and gauges for the editor.
//
// Each Collector owns a private registry so several sessions (and tests) can
// coexist in one process without duplicate registration panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command results recorded by ObserveCommand
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultError   = "error"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	Commands     *prometheus.CounterVec
	HistoryDepth *prometheus.GaugeVec
	Entities     prometheus.Gauge
	Autosaves    *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with the given namespace on a fresh registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of graph commands by outcome",
			},
			[]string{"command", "result"},
		),
		HistoryDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_depth",
				Help:      "Number of snapshots held on each history stack",
			},
			[]string{"stack"},
		),
		Entities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "entities",
				Help:      "Number of entities in the live graph",
			},
		),
		Autosaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "autosaves_total",
				Help:      "Total number of autosave attempts by outcome",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.Commands,
		c.HistoryDepth,
		c.Entities,
		c.Autosaves,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// Registry returns the private registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCommand counts one command outcome
func (c *Collector) ObserveCommand(command, result string) {
	c.Commands.WithLabelValues(command, result).Inc()
}

// ObserveState records the history stack sizes and entity count
func (c *Collector) ObserveState(undo, redo, entities int) {
	c.HistoryDepth.WithLabelValues("undo").Set(float64(undo))
	c.HistoryDepth.WithLabelValues("redo").Set(float64(redo))
	c.Entities.Set(float64(entities))
}

// ObserveAutosave counts one autosave attempt
func (c *Collector) ObserveAutosave(result string) {
	c.Autosaves.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
