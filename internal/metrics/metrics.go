// Package metrics provides Prometheus metrics for the relay.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropbox2slack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropbox2slack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropbox2slack_sync_runs_total",
			Help: "Total sync runs by outcome",
		},
		[]string{"result"},
	)

	changeEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropbox2slack_change_entries_total",
			Help: "Change entries received from Dropbox by kind",
		},
		[]string{"kind"},
	)

	filesRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropbox2slack_files_relayed_total",
			Help: "Files whose shared link was resolved and queued for Slack",
		},
	)

	linkFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropbox2slack_link_failures_total",
			Help: "Files skipped because their shared link could not be resolved",
		},
	)

	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropbox2slack_messages_total",
			Help: "Slack messages by delivery outcome",
		},
		[]string{"result"},
	)

	panicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropbox2slack_panics_recovered_total",
			Help: "Panics recovered by the HTTP middleware",
		},
	)
)

// Message delivery outcomes.
const (
	MessageSent     = "sent"
	MessageFallback = "fallback"
	MessageFailed   = "failed"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordSyncRun(success bool) {
	if success {
		syncRunsTotal.WithLabelValues("success").Inc()
		return
	}
	syncRunsTotal.WithLabelValues("error").Inc()
}

func RecordChangeEntry(kind string) {
	changeEntriesTotal.WithLabelValues(kind).Inc()
}

func RecordFileRelayed() {
	filesRelayedTotal.Inc()
}

func RecordLinkFailure() {
	linkFailuresTotal.Inc()
}

func RecordMessage(result string) {
	messagesTotal.WithLabelValues(result).Inc()
}

func RecordPanic() {
	panicsTotal.Inc()
}
