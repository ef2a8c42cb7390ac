package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seeder", Name: "http_requests_total", Help: "Status server requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seeder", Name: "http_request_duration_seconds",
			Help:    "Status server request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seeder", Name: "external_requests_total", Help: "Document store calls."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seeder", Name: "external_request_duration_seconds",
			Help:    "Document store call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	SeedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seeder", Name: "records_total", Help: "Records created/deleted per collection."},
		[]string{"collection", "outcome"}, // outcome: created|failed|deleted|delete_failed
	)
	SeedFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "seeder", Name: "failures_total", Help: "Failed creates/deletes by error type."},
		[]string{"collection", "outcome", "error_type"},
	)
	StageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "seeder", Name: "stage_duration_seconds", Help: "Wall time of the last seeding stage."},
		[]string{"collection"},
	)
	LastRunFinished = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "seeder", Name: "last_run_finished_timestamp_seconds", Help: "Unix time the last run reached done."},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, SeedRecords, SeedFailures, StageDuration, LastRunFinished)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveSeed(collection, outcome string) {
	SeedRecords.WithLabelValues(collection, outcome).Inc()
}

func ObserveStage(collection string, dur time.Duration) {
	StageDuration.WithLabelValues(collection).Set(dur.Seconds())
}

// ObserveSeedFailure counts a failed record under outcome and the class of err.
func ObserveSeedFailure(collection, outcome string, err error) {
	SeedRecords.WithLabelValues(collection, outcome).Inc()
	SeedFailures.WithLabelValues(collection, outcome, LabelErr(err)).Inc()
}

// LabelErr reduces err to a bounded label value: the code of the first coded
// error in its chain, or a coarse class.
func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	return "other"
}
