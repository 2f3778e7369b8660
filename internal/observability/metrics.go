package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	notificationSends  *prometheus.CounterVec
	userNotifPublished *prometheus.CounterVec
	sseClientsActive   prometheus.Gauge
	exportsGenerated   *prometheus.CounterVec
	contactSubmissions *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		notificationSends = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_sends_total",
			Help: "Notification delivery attempts by channel and outcome.",
		}, []string{"channel", "status"})

		userNotifPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_notifications_published_total",
			Help: "In-app notifications published, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		exportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_generated_total",
			Help: "Response export files generated, by format.",
		}, []string{"format"})

		contactSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact-sales submissions by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			notificationSends,
			userNotifPublished,
			sseClientsActive,
			exportsGenerated,
			contactSubmissions,
		)
	})
}

// Requests exposes the counter for served requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// NotificationSends exposes the counter for channel delivery attempts.
func NotificationSends() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationSends
}

// UserNotificationsPublished exposes the counter for in-app notifications.
func UserNotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return userNotifPublished
}

// SSEClientsActive exposes the gauge of connected stream clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// ExportsGenerated exposes the counter for generated export files.
func ExportsGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return exportsGenerated
}

// ContactSubmissions exposes the counter for contact-sales submissions.
func ContactSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return contactSubmissions
}
