// Package metrics provides Prometheus metrics for the sitedeck dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API call result labels.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultTransport = "transport"
	ResultCanceled  = "canceled"
)

var (
	// Dashboard HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedeck_http_requests_total",
			Help: "Total number of dashboard HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitedeck_http_request_duration_seconds",
			Help:    "Dashboard HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Site API metrics
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedeck_api_requests_total",
			Help: "Total site API calls by operation and result",
		},
		[]string{"op", "result"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitedeck_api_request_duration_seconds",
			Help:    "Site API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Dashboard state metrics
	listingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitedeck_listing_entries",
			Help: "Number of entries in the currently displayed listing",
		},
	)

	staleListingsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitedeck_stale_listings_discarded_total",
			Help: "Listing responses dropped because a newer listing was issued",
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedeck_notifications_total",
			Help: "Total notifications shown, by severity",
		},
		[]string{"severity"},
	)

	eventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitedeck_event_subscribers",
			Help: "Number of connected notification event streams",
		},
	)

	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedeck_events_dropped_total",
			Help: "Events not delivered to a stream whose buffer was full",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records a dashboard HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAPICall records one site API call.
func RecordAPICall(op string, duration time.Duration, result string) {
	apiRequestsTotal.WithLabelValues(op, result).Inc()
	apiRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetListingEntries sets the size of the displayed listing.
func SetListingEntries(n int) {
	listingEntries.Set(float64(n))
}

// RecordStaleListing records a discarded out-of-order listing response.
func RecordStaleListing() {
	staleListingsDiscarded.Inc()
}

// RecordNotification records a notification by severity.
func RecordNotification(severity string) {
	notificationsTotal.WithLabelValues(severity).Inc()
}

// SetEventSubscribers sets the number of connected event streams.
func SetEventSubscribers(n int) {
	eventSubscribers.Set(float64(n))
}

// RecordDroppedEvent counts an event a slow stream missed.
func RecordDroppedEvent(eventType string) {
	eventsDropped.WithLabelValues(eventType).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics, labelled
// by the matched route pattern. It must wrap the ServeMux directly so the
// pattern the mux sets on r is visible here.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
	})
}
