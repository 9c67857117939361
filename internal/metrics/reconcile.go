package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "document",
			Name:      "reconciled_rows_total",
			Help:      "Child rows written by document saves, by collection and action.",
		},
		[]string{"collection", "action"},
	)

	saveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "document",
			Name:      "saves_total",
			Help:      "Document saves by outcome.",
		},
		[]string{"outcome"},
	)
)

// ObserveReconcile adds the row counts of one committed collection reconciliation.
func ObserveReconcile(collection string, inserted, updated, deleted, stale int) {
	add := func(action string, n int) {
		if n > 0 {
			reconcileRowsTotal.WithLabelValues(collection, action).Add(float64(n))
		}
	}
	add("inserted", inserted)
	add("updated", updated)
	add("deleted", deleted)
	add("stale", stale)
}

// ObserveSave counts a save attempt; outcome is "committed", "not_found" or "failed".
func ObserveSave(outcome string) {
	saveTotal.WithLabelValues(outcome).Inc()
}
