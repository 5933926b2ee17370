// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the bookmart API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for CRUD request latencies,
// ranging from 1ms to 10s.
var APIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method, route pattern, and
	// status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmart_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method
	// and route pattern.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookmart_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthFailuresTotal counts authentication and authorization denials by
	// coarse kind (malformed, invalid_signature, expired, no_principal,
	// unauthenticated, forbidden).
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmart_auth_failures_total",
			Help: "Auth failures",
		},
		[]string{"kind"},
	)

	// LoginsTotal counts login attempts by outcome (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmart_logins_total",
			Help: "Login attempts",
		},
		[]string{"status"},
	)

	// PurchasesTotal counts accepted purchases.
	PurchasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookmart_purchases_total",
			Help: "Accepted purchases",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		LoginsTotal,
		PurchasesTotal,
	)
}
