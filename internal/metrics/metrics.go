package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendor_match_passes_total",
			Help: "Total number of matching passes by outcome",
		},
		[]string{"outcome"},
	)

	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vendor_match_candidates",
			Help:    "Number of candidate vendors scored per matching pass",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "vendor_match_duration_seconds",
			Help: "Duration of a matching pass including candidate loading",
		},
	)

	OutreachDrafted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_drafts_total",
			Help: "Outreach drafts generated, by result",
		},
		[]string{"result"},
	)

	OutreachDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_deliveries_total",
			Help: "Outreach delivery attempts, by provider and status",
		},
		[]string{"provider", "status"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)
