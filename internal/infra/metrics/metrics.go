// Package metrics provides Prometheus metrics for the CashMind engine:
// counters for the challenge lifecycle, badge awards, and transaction entry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Challenge Lifecycle ────────────────────────────────────────────────────

// ChallengesAccepted tracks accepted challenges.
var ChallengesAccepted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "challenges_accepted_total",
	Help:      "Total challenges accepted.",
})

// ChallengesFinished tracks challenges leaving the active state, by outcome.
var ChallengesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "challenges_finished_total",
	Help:      "Total challenges reaching a terminal state.",
}, []string{"outcome"})

// LazyExpirations tracks expiry-failures detected as a side effect of reads.
var LazyExpirations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "challenges_lazy_expirations_total",
	Help:      "Challenges failed lazily on view after expiring over limit.",
})

// XPMinted tracks XP snapshotted at completion time.
var XPMinted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "xp_minted_total",
	Help:      "Total XP granted through challenge completion.",
})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesAwarded tracks newly granted badges by rule key.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "badges_awarded_total",
	Help:      "Total badges newly awarded.",
}, []string{"badge_key"})

// ─── Transactions ───────────────────────────────────────────────────────────

// TransactionsRecorded tracks recorded transactions by type.
var TransactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashmind",
	Name:      "transactions_recorded_total",
	Help:      "Total transactions recorded.",
}, []string{"type"})
