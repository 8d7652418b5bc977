package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// viewsTotal counts view recording attempts by outcome:
	// recorded, duplicate, skipped, not_found, error.
	viewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_views_total",
			Help: "Post view recording attempts by outcome",
		},
		[]string{"result"},
	)

	votesToggledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_helpful_toggles_total",
			Help: "Helpful-vote toggles by resulting state",
		},
		[]string{"state"},
	)

	storageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_storage_errors_total",
			Help: "Ledger storage failures by operation",
		},
		[]string{"op"},
	)

	rankingDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_updates_dropped_total",
			Help: "Ranking updates dropped because the queue was full",
		},
	)
)
