package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce               sync.Once
	httpRequestsTotal          *prometheus.CounterVec
	httpLatencySeconds         *prometheus.HistogramVec
	activitiesRecordedTotal    prometheus.Counter
	activitiesRejectedTotal    *prometheus.CounterVec
	sourceNameResolutionsTotal *prometheus.CounterVec
	activityListLatencySeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the audit service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easyaudit_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "easyaudit_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		activitiesRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "easyaudit_activities_recorded_total",
			Help: "Activities persisted.",
		})

		activitiesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easyaudit_activities_rejected_total",
			Help: "Activities that were not persisted, by reason.",
		}, []string{"reason"})

		sourceNameResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easyaudit_source_name_resolutions_total",
			Help: "Source name resolutions, by outcome (override, entity, fallback, error).",
		}, []string{"outcome"})

		activityListLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "easyaudit_activity_list_latency_seconds",
			Help:    "Latency of filtered activity queries.",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			activitiesRecordedTotal,
			activitiesRejectedTotal,
			sourceNameResolutionsTotal,
			activityListLatencySeconds,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// ActivitiesRecorded exposes the recorded activity counter.
func ActivitiesRecorded() prometheus.Counter {
	RegisterMetrics()
	return activitiesRecordedTotal
}

// ActivitiesRejected exposes the rejected activity counter.
func ActivitiesRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return activitiesRejectedTotal
}

// SourceNameResolutions exposes the display name resolution counter.
func SourceNameResolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return sourceNameResolutionsTotal
}

// ActivityListLatency exposes the list query latency histogram.
func ActivityListLatency() prometheus.Histogram {
	RegisterMetrics()
	return activityListLatencySeconds
}
