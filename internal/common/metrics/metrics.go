package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_batches_total",
			Help: "Total number of dispatch batches processed",
		},
		[]string{"kind", "outcome"},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Total number of per-recipient delivery attempts",
		},
		[]string{"channel", "outcome"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dispatch_batch_duration_seconds",
			Help: "Duration of batch dispatch in seconds",
		},
		[]string{"kind"},
	)

	EnhancementCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancement_calls_total",
			Help: "Total number of enhancement gateway calls",
		},
		[]string{"operation", "outcome"},
	)

	RouterMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_matches_total",
			Help: "Total number of routed commands by matched stage",
		},
		[]string{"stage"},
	)
)
