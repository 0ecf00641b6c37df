package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestChallengeMetrics_Registered(t *testing.T) {
	ChallengesAccepted.Inc()
	ChallengesFinished.WithLabelValues("completed").Inc()
	ChallengesFinished.WithLabelValues("failed").Inc()
	LazyExpirations.Inc()
	XPMinted.Add(50)

	names := gatheredNames(t)
	expected := []string{
		"cashmind_challenges_accepted_total",
		"cashmind_challenges_finished_total",
		"cashmind_challenges_lazy_expirations_total",
		"cashmind_xp_minted_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestBadgeAndTransactionMetrics_Registered(t *testing.T) {
	BadgesAwarded.WithLabelValues("first_challenge").Inc()
	TransactionsRecorded.WithLabelValues("expense").Inc()
	TransactionsRecorded.WithLabelValues("income").Inc()

	names := gatheredNames(t)
	if !names["cashmind_badges_awarded_total"] {
		t.Error("cashmind_badges_awarded_total not found")
	}
	if !names["cashmind_transactions_recorded_total"] {
		t.Error("cashmind_transactions_recorded_total not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	count := 0
	for _, f := range families {
		if len(f.GetName()) > 9 && f.GetName()[:9] == "cashmind_" {
			count++
		}
	}
	if count < 5 {
		t.Errorf("expected at least 5 cashmind_ metric families, got %d", count)
	}
}
