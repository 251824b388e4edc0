// Package metrics exposes fabriq's Prometheus metrics: event-queue depth
// and throughput, reconciliation cycle timing, assignment churn, and RPC
// request counters. Collectors are registered once at package init, a
// Timer helper wraps duration observations, and Handler serves the
// side-channel scrape endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPC metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriq_api_requests_total",
			Help: "Total number of RPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fabriq_api_request_duration_seconds",
			Help:    "RPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Event-stream metrics
	EventsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriq_events_sent_total",
			Help: "Total number of events sent to subscribers, by model type and event type",
		},
		[]string{"model_type", "event_type"},
	)

	EventQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fabriq_event_queue_depth",
			Help: "Number of undelivered events per consumer",
		},
		[]string{"consumer_id"},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fabriq_reconciliation_event_duration_seconds",
			Help:    "Time taken to process a single event in the reconciler",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriq_reconciliation_events_total",
			Help: "Total number of events processed by the reconciler, by model type and outcome",
		},
		[]string{"model_type", "outcome"},
	)

	AssignmentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fabriq_assignments_created_total",
			Help: "Total number of assignments created by the reconciler",
		},
	)

	AssignmentsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fabriq_assignments_deleted_total",
			Help: "Total number of assignments deleted by the reconciler",
		},
	)

	// GitOps metrics
	GitOpsCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fabriq_gitops_commits_total",
			Help: "Total number of commits pushed by the GitOps processor",
		},
	)

	GitOpsRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fabriq_gitops_render_duration_seconds",
			Help:    "Time taken to render and push one deployment's manifests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		EventsSentTotal,
		EventQueueDepth,
		ReconciliationDuration,
		ReconciliationEventsTotal,
		AssignmentsCreatedTotal,
		AssignmentsDeletedTotal,
		GitOpsCommitsTotal,
		GitOpsRenderDuration,
	)
}

// Handler returns the Prometheus scrape handler for the HTTP side-channel.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's duration and reports it to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration reports the elapsed time since NewTimer to o, which
// may be a bare Histogram or a HistogramVec.WithLabelValues() result.
func (t *Timer) ObserveDuration(o prometheus.Observer) {
	o.Observe(time.Since(t.start).Seconds())
}
