// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brief_engine",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"stage"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brief_engine",
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome.",
	}, []string{"outcome"})

	reviewScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "brief_engine",
		Name:      "review_score",
		Help:      "Quality score reported by the review stage.",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})
)
