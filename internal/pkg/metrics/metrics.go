// Package metrics defines and registers the custom Prometheus metrics of the
// project access API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "project_access"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// AccessRequestsCreatedTotal counts access requests filed by clients.
var AccessRequestsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_requests_created_total",
		Help:      "Total number of access requests created.",
	},
)

// AccessDecisionsTotal counts admin decisions.
// Labels:
//   - decision: "APPROVED" or "DENIED"
//   - redecided: "true" when the request had already been decided
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access request decisions, by decision.",
	},
	[]string{"decision", "redecided"},
)

// GrantRepairsTotal counts access grants re-applied by the reconciler.
// Label:
//   - result: "repaired" or "failed"
var GrantRepairsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grant_repairs_total",
		Help:      "Total number of missing access grants handled by the reconciler.",
	},
	[]string{"result"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportExportsTotal counts report exports.
// Label:
//   - result: "ok", "rejected" (failed before the first byte) or "truncated"
var ReportExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_exports_total",
		Help:      "Total number of report exports, by outcome.",
	},
	[]string{"result"},
)

// ReportRowsStreamedTotal counts joined records written to report streams.
var ReportRowsStreamedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_rows_streamed_total",
		Help:      "Total number of joined access requests written to report streams.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsCreatedTotal counts successful logins.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions established by login.",
	},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// ActivityQueueDepth tracks pending entries in each activity worker channel.
// Label:
//   - worker_id: numeric worker index
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts entries dropped because a worker queue was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity entries dropped on a full queue.",
	},
)
