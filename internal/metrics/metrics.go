package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tempatku",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	timeProviderResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tempatku",
			Name:      "time_provider_results_total",
			Help:      "Time resolution attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tempatku",
			Name:      "booking_admissions_total",
			Help:      "Booking admission decisions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, timeProviderResults, admissions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncTimeProvider records one provider attempt outcome.
func IncTimeProvider(provider, outcome string) {
	timeProviderResults.WithLabelValues(provider, outcome).Inc()
}

// IncAdmission records one admission decision: accepted, rejected_user,
// rejected_place, rejected_closed or rejected_capacity.
func IncAdmission(outcome string) {
	admissions.WithLabelValues(outcome).Inc()
}
