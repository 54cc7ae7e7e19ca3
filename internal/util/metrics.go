package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportsCommittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imports_committed_total",
		Help: "Total number of monthly analytics imports committed",
	}, []string{"source"})

	ImportRowsMergedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_rows_merged_total",
		Help: "Total number of per-title rows produced by export reconciliation",
	})

	ReconciliationWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_reconciliation_warnings_total",
		Help: "Total number of merged rows missing from one export",
	})

	ImportsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imports_failed_total",
		Help: "Total number of failed import commits",
	}, []string{"reason"})

	PayoutRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_runs_total",
		Help: "Total number of payout recalculation runs",
	}, []string{"result"})

	PayoutsRecomputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payouts_recomputed_total",
		Help: "Total number of per-creator payout rows recomputed",
	})

	PayoutRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payout_run_duration_seconds",
		Help:    "Duration of full payout recalculation runs",
		Buckets: prometheus.DefBuckets,
	})

	AttributionClampedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attribution_clamped_total",
		Help: "Times a creator's stream count exceeded the platform total and the ratio was clamped to 1",
	})

	PoolSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svod_pool_saves_total",
		Help: "Total number of SVOD pool entries saved",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
