// Package metrics defines and registers all custom Prometheus metrics for the
// tuiter API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry at import time via
// promauto; the /metrics endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tuiter"

// ── Feedback metrics ──────────────────────────────────────────────────────────

// FeedbackActionsTotal counts feedback actions that committed.
// Labels:
//   - kind: "view", "like", "retuit", or "bookmark"
//   - op: "added", "removed", or "noop" (repeated view)
var FeedbackActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_actions_total",
		Help:      "Total number of feedback actions committed, by kind and outcome.",
	},
	[]string{"kind", "op"},
)

// ── Tuit metrics ──────────────────────────────────────────────────────────────

// TuitsCreatedTotal counts newly published tuits.
// Label:
//   - type: "root", "comment", or "quote"
var TuitsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tuits_created_total",
		Help:      "Total number of tuits published, by type.",
	},
	[]string{"type"},
)

// FeedBuildDuration measures how long assembling a ranked feed takes,
// candidate query included.
// Label:
//   - feed: "root" or "comments"
var FeedBuildDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_build_duration_seconds",
		Help:      "Duration of ranked feed assembly from candidate query to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"feed"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsCreatedTotal counts successful logins.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions created by successful logins.",
	},
)

// ── Capacity metrics ──────────────────────────────────────────────────────────

// DBPoolUtilization tracks the sampled fraction of the connection pool in use.
var DBPoolUtilization = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_utilization",
		Help:      "Fraction of the database connection pool currently acquired (0..1).",
	},
)

// RequestsShedTotal counts requests rejected by the admission gate.
var RequestsShedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_shed_total",
		Help:      "Total number of requests shed because the pool was near saturation.",
	},
)
