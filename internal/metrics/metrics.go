// Package metrics holds the domain collectors exposed on /metrics next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "archhub"

var (
	ApplicationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_created_total",
		Help:      "Applications added to the catalogue, by source.",
	}, []string{"source"})

	ApplicationsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_updated_total",
		Help:      "Applications changed through a patch.",
	})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Rejected form steps and records, by operation.",
	}, []string{"operation"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Catalogue exports, by format.",
	}, []string{"format"})

	DraftsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "drafts_saved_total",
		Help:      "Form drafts written.",
	})

	FormSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "form_sessions",
		Help:      "Open form sessions.",
	})
)
