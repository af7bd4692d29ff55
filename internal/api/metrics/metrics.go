// Package metrics defines and registers the custom Prometheus metrics for
// sheetdesk. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sheetdesk"

// ── Catalog metrics ───────────────────────────────────────────────────────────

// SheetsCreatedTotal counts sheets added to the catalog.
// Label:
//   - replayed: "true" when an Idempotency-Key matched an earlier creation
var SheetsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sheets_created_total",
		Help:      "Total number of sheet creations, labelled by whether they were idempotent replays.",
	},
	[]string{"replayed"},
)

// SheetsDeletedTotal counts sheets removed from the catalog.
var SheetsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sheets_deleted_total",
		Help:      "Total number of sheets deleted.",
	},
)

// AssignmentsTotal counts assignment requests that succeeded.
// Label:
//   - result: "added" (new edge) or "existing" (edge already present)
var AssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_total",
		Help:      "Total number of successful sheet assignments, by result (added/existing).",
	},
	[]string{"result"},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// AccountsCreatedTotal counts new accounts.
// Label:
//   - role: the stored role (CEO, Manager, User)
var AccountsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthzDeniedTotal counts requests rejected by the access policy.
// Label:
//   - operation: the denied operation (e.g. "createSheet")
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of requests denied by the access policy, by operation.",
	},
	[]string{"operation"},
)

// ── Serializer metrics ────────────────────────────────────────────────────────

// SerializerQueueDepth tracks the number of jobs waiting in each shard.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SerializerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "serializer_queue_depth",
		Help:      "Current number of jobs pending in each serializer worker channel.",
	},
	[]string{"worker_id"},
)

// ObserveQueueDepth adapts SerializerQueueDepth to queue.WithDepthObserver.
func ObserveQueueDepth(worker string, n int) {
	SerializerQueueDepth.WithLabelValues(worker).Set(float64(n))
}
