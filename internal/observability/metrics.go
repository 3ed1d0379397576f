// Package observability exposes Prometheus metrics for the deadline engine
// and the HTTP API.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "lumina"

// Metrics groups all Prometheus instruments. It implements scheduler.Observer.
type Metrics struct {
	registry *prometheus.Registry

	Passes         *prometheus.CounterVec
	PassDuration   prometheus.Histogram
	TasksEvaluated prometheus.Gauge
	Alerts         *prometheus.CounterVec
	Promotions     prometheus.Counter
	WSClients      prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
}

// NewMetrics registers all instruments on a fresh registry together with the
// Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "passes_total",
			Help:      "Evaluation passes by result.",
		}, []string{"result"}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pass_duration_ms",
			Help:      "Duration of an evaluation pass in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
		TasksEvaluated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "tasks_evaluated",
			Help:      "Incomplete tasks with a due date seen by the last pass.",
		}),
		Alerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "alerts_total",
			Help:      "Deadline alerts dispatched by channel.",
		}, []string{"channel"}),
		Promotions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "promotions_total",
			Help:      "Tasks moved to the front of the list.",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected alert websocket clients.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

// ObservePass implements scheduler.Observer.
func (m *Metrics) ObservePass(elapsed time.Duration, evaluated int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Passes.WithLabelValues(result).Inc()
	m.PassDuration.Observe(float64(elapsed.Microseconds()) / 1000)
	if err == nil {
		m.TasksEvaluated.Set(float64(evaluated))
	}
}

// ObserveAlert implements scheduler.Observer.
func (m *Metrics) ObserveAlert(channel string) {
	m.Alerts.WithLabelValues(channel).Inc()
}

// ObservePromotion implements scheduler.Observer.
func (m *Metrics) ObservePromotion() {
	m.Promotions.Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
