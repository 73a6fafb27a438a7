// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_access_decisions_total",
			Help: "Total number of access resolutions by flow and outcome",
		},
		[]string{"flow", "access"},
	)

	ReconcileResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_reconcile_results_total",
			Help: "Total number of identity reconciliations by outcome",
		},
		[]string{"outcome"},
	)

	StoreQueryPages = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lending_store_query_pages",
			Help:    "Pages fetched per paginated store query",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"table"},
	)

	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_store_write_failures_total",
			Help: "Total number of failed store writes by table and operation",
		},
		[]string{"table", "operation"},
	)

	PartnerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lending_partner_requests_total",
			Help: "Total number of partner REST calls by partner and status",
		},
		[]string{"partner", "status"},
	)
)
