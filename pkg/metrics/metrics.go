package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics holds the counters and histograms of the checkout pipeline
type CheckoutMetrics struct {
	CheckoutsCreated  *prometheus.CounterVec
	NotificationsSeen *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPLatencyMS     *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout pipeline metrics under the given subsystem
func NewCheckoutMetrics(service string) *CheckoutMetrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionpark",
		Subsystem: service,
		Name:      "checkouts_created_total",
		Help:      "Total number of checkout transactions created.",
	}, []string{"status"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionpark",
		Subsystem: service,
		Name:      "payment_notifications_total",
		Help:      "Payment notifications by reconciliation outcome.",
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fashionpark",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fashionpark",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	prometheus.MustRegister(checkouts, notifications, requests, latency)
	return &CheckoutMetrics{
		CheckoutsCreated:  checkouts,
		NotificationsSeen: notifications,
		HTTPRequests:      requests,
		HTTPLatencyMS:     latency,
	}
}

// Handler exposes the default prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
