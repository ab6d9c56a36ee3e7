package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incubator"

// Outcomes of a deposit lookup.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeComputed = "computed"
	OutcomeStale    = "stale"
	OutcomeNoData   = "no_data"
	OutcomeInvalid  = "invalid_account"
)

// Stages of the aggregation pipeline that query the ledger.
const (
	StageActivity = "activity"
	StageDetails  = "details"
)

var (
	// DepositLookups counts the deposit lookups by outcome.
	DepositLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deposit_lookups_total",
		Help:      "Number of deposit lookups by outcome.",
	}, []string{"outcome"})

	// SourceErrors counts the failed queries to the ledger by stage.
	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_errors_total",
		Help:      "Number of failed ledger queries by pipeline stage.",
	}, []string{"stage"})

	// DetailBatches counts the batches of transaction details fetched.
	DetailBatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detail_batches_total",
		Help:      "Number of batches of transaction details fetched.",
	})

	// AggregationDuration observes the duration of a full pipeline run.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of the deposit aggregation pipeline.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)
