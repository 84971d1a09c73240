package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtops",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and route.",
		},
		[]string{"method", "route"},
	)

	paymentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtops",
			Name:      "payments_processed_total",
			Help:      "Booking payments by path (atomic/legacy) and outcome.",
		},
		[]string{"path", "outcome"},
	)

	refundsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtops",
			Name:      "refunds_processed_total",
			Help:      "Cancellations that posted a refund ledger entry.",
		},
	)
)

// Register registers all collectors. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, paymentsProcessed, refundsProcessed)
	})
}

func IncHTTP(method, route string) {
	httpRequests.WithLabelValues(method, route).Inc()
}

func IncPayment(path, outcome string) {
	paymentsProcessed.WithLabelValues(path, outcome).Inc()
}

func IncRefund() {
	refundsProcessed.Inc()
}
