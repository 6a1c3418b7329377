// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_queries_total",
			Help: "Total number of chat queries processed, by detected intent",
		},
		[]string{"intent"},
	)

	ChatFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fallbacks_total",
			Help: "Total number of responses served by the template fallback",
		},
		[]string{"reason"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "generation_request_duration_seconds",
			Help: "Duration of generation collaborator calls in seconds",
		},
	)

	RecordsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "records_rejected_total",
			Help: "Total number of raw rows dropped during preparation",
		},
	)

	AlertsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "Total number of churn alerts delivered, by channel",
		},
		[]string{"channel"},
	)
)
