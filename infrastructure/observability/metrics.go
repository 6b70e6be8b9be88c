package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric instruments for the treats ledger. Registered on the default
// registry and exposed through the /metrics endpoint.
var (
	TreatsGiven = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treats_given_total",
		Help: "Number of successful give operations",
	})

	TreatsGivenAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treats_given_amount_total",
		Help: "Total treats moved by give operations",
	})

	TreatsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treats_purchased_total",
		Help: "Number of applied purchase credits",
	})

	DuplicatePurchases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treats_duplicate_purchases_total",
		Help: "Number of purchase requests recognized as retries",
	})

	OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "treats_operation_failures_total",
		Help: "Failed operations by error kind",
	}, []string{"operation", "kind"})

	ReconciliationDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "treats_reconciliation_drifted_accounts",
		Help: "Accounts whose cached counters drifted from the ledger in the last pass",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "treats_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
