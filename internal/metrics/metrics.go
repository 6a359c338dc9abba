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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Business metrics
	discussionsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_discussions_submitted_total",
			Help: "Total number of discussions submitted",
		},
	)

	broadcastEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "community_broadcast_events_total",
			Help: "Total number of events published to the feed channel",
		},
		[]string{"type"},
	)

	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "community_ws_connections",
			Help: "Currently connected websocket clients",
		},
	)

	heartbeatsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "community_heartbeats_total",
			Help: "Total number of presence heartbeats received",
		},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, endpoint, s).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, s).Observe(duration.Seconds())
}

func RecordDiscussionSubmitted() {
	discussionsSubmittedTotal.Inc()
}

func RecordBroadcast(eventType string) {
	broadcastEventsTotal.WithLabelValues(eventType).Inc()
}

func WSConnected() {
	wsConnections.Inc()
}

func WSDisconnected() {
	wsConnections.Dec()
}

func RecordHeartbeat() {
	heartbeatsTotal.Inc()
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
