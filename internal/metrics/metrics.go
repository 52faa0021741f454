// Package metrics provides Prometheus metrics for the profile wizard.
//
// Example usage:
//
//	m := metrics.New()
//	m.RecordStepCompleted("visa")
//	m.ObserveSave(time.Since(start), "")
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profile_wizard"

// Metrics holds all application metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	// SessionsStarted counts new wizard sessions.
	SessionsStarted prometheus.Counter
	// StepsCompleted counts forward commits, labelled by step id.
	StepsCompleted *prometheus.CounterVec
	// Actions counts reducer applications by action and result.
	Actions *prometheus.CounterVec
	// ProfilesSaved counts successful saves.
	ProfilesSaved prometheus.Counter
	// SaveFailures counts saves that failed validation or persistence.
	SaveFailures *prometheus.CounterVec
	// SaveDuration tracks end-to-end save latency including the commit delay.
	SaveDuration prometheus.Histogram
	// UploadsPresigned counts issued upload URLs by kind.
	UploadsPresigned *prometheus.CounterVec
	// EventPublishFailures counts events that could not be delivered.
	EventPublishFailures prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics with the default Prometheus registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewForTest creates metrics with an isolated registry for testing
func NewForTest() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates metrics with a custom registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	m := &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of wizard sessions started",
		}),
		StepsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_completed_total",
			Help:      "Total number of step commits by step",
		}, []string{"step"}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of wizard actions by action and result",
		}, []string{"action", "result"}),
		ProfilesSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_saved_total",
			Help:      "Total number of saved profiles",
		}),
		SaveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_failures_total",
			Help:      "Total number of failed saves by reason",
		}, []string{"reason"}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Save latency in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5},
		}),
		UploadsPresigned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_presigned_total",
			Help:      "Total number of presigned upload URLs by kind",
		}, []string{"kind"}),
		EventPublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Total number of events that failed to publish",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordSessionStarted increments the session counter
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordStepCompleted increments the commit counter for step
func (m *Metrics) RecordStepCompleted(step string) {
	m.StepsCompleted.WithLabelValues(step).Inc()
}

// RecordAction counts one reducer application.
func (m *Metrics) RecordAction(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Actions.WithLabelValues(action, result).Inc()
}

// ObserveSave records a finished save. reason is empty on success.
func (m *Metrics) ObserveSave(d time.Duration, reason string) {
	m.SaveDuration.Observe(d.Seconds())
	if reason == "" {
		m.ProfilesSaved.Inc()
		return
	}
	m.SaveFailures.WithLabelValues(reason).Inc()
}

// RecordUpload increments the presign counter for kind
func (m *Metrics) RecordUpload(kind string) {
	m.UploadsPresigned.WithLabelValues(kind).Inc()
}

// RecordEventFailure increments the publish failure counter
func (m *Metrics) RecordEventFailure() {
	m.EventPublishFailures.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
