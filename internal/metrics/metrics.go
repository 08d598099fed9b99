package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RefreshCycles counts finished refresh cycles by result (ok, failed)
	RefreshCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abfuhr_refresh_cycles_total",
			Help: "Total number of schedule refresh cycles by result",
		},
		[]string{"result"},
	)

	// CalendarFilesFailed counts calendar documents skipped during refresh
	CalendarFilesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "abfuhr_calendar_files_failed_total",
			Help: "Total number of calendar files skipped during refresh",
		},
	)

	// RefreshDuration tracks refresh cycle duration in seconds
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "abfuhr_refresh_duration_seconds",
			Help:    "Duration of schedule refresh cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CollectionDates is the number of dates per category in the published snapshot
	CollectionDates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "abfuhr_collection_dates",
			Help: "Number of collection dates per category in the current schedule",
		},
		[]string{"category"},
	)

	// LastRefresh is the Unix time of the last published snapshot
	LastRefresh = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "abfuhr_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		},
	)

	// RequestDuration tracks HTTP request duration in seconds by method, route and status
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts HTTP requests by method, route and status
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RefreshCycles, CalendarFilesFailed, RefreshDuration,
			CollectionDates, LastRefresh, RequestDuration, RequestTotal)
	})
}

// RecordCycle records a successful refresh cycle
func RecordCycle(duration time.Duration, failedFiles int, datesPerCategory map[string]int, at time.Time) {
	RefreshCycles.WithLabelValues("ok").Inc()
	RefreshDuration.Observe(duration.Seconds())
	CalendarFilesFailed.Add(float64(failedFiles))
	for category, n := range datesPerCategory {
		CollectionDates.WithLabelValues(category).Set(float64(n))
	}
	LastRefresh.Set(float64(at.Unix()))
}

// RecordCycleFailure records a cycle aborted before a snapshot was published
func RecordCycleFailure(duration time.Duration) {
	RefreshCycles.WithLabelValues("failed").Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RecordRequest records duration and count for an HTTP request. route is the
// matched route pattern.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}
