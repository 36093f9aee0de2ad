// internal/matching/metrics.go
// Prometheus metrics for the matching engine

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_matches_created_total",
		Help: "Matches created, by origin (system or admin)",
	}, []string{"origin"})

	matchResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_responses_total",
		Help: "User decisions applied to match sides, by decision",
	}, []string{"decision"})

	matchesActivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matching_matches_activated_total",
		Help: "Matches that reached the active state",
	})

	generationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_generation_runs_total",
		Help: "Candidate generation runs, by outcome",
	}, []string{"outcome"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_generation_duration_seconds",
		Help:    "Wall time of candidate generation runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	scoringFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matching_scoring_fallbacks_total",
		Help: "Scoring calls that fell back to the rule-based strategy",
	})

	compatibilityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_compatibility_score",
		Help:    "Distribution of compatibility scores for created matches",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
)
