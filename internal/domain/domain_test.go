package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestChallengeStatus_Terminal(t *testing.T) {
	if ChallengeActive.Terminal() {
		t.Error("active should not be terminal")
	}
	for _, s := range []ChallengeStatus{ChallengeCompleted, ChallengeFailed, ChallengeCancelled} {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
}

func TestUserChallenge_DaysLeft(t *testing.T) {
	now := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	c := UserChallenge{EndsAt: now.AddDate(0, 0, 7)}

	if got := c.DaysLeft(now); got != 7 {
		t.Errorf("full window: %d, want 7", got)
	}
	// Partial days round up.
	if got := c.DaysLeft(now.AddDate(0, 0, 6).Add(-time.Hour)); got != 2 {
		t.Errorf("one day and an hour left: %d, want 2", got)
	}
	if got := c.DaysLeft(c.EndsAt); got != 0 {
		t.Errorf("at the deadline: %d, want 0", got)
	}
	if got := c.DaysLeft(c.EndsAt.Add(time.Hour)); got != 0 {
		t.Errorf("past the deadline: %d, want 0 (floored)", got)
	}
}

func TestUserChallenge_Expired(t *testing.T) {
	ends := time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)
	c := UserChallenge{EndsAt: ends}

	if c.Expired(ends) {
		t.Error("the deadline instant itself is not expired")
	}
	if !c.Expired(ends.Add(time.Second)) {
		t.Error("one second past the deadline is expired")
	}
}

func TestConsumedPercent(t *testing.T) {
	tests := []struct {
		spent, limit string
		want         int
	}{
		{"0", "20", 0},
		{"10", "20", 50},
		{"20", "20", 100},
		{"30", "20", 100}, // Clamped
		{"5.01", "20", 25},
		{"0", "0", 0},
		{"0.01", "0", 100}, // Any spending against a zero limit
	}
	for _, tt := range tests {
		if got := ConsumedPercent(dec(tt.spent), dec(tt.limit)); got != tt.want {
			t.Errorf("ConsumedPercent(%s, %s) = %d, want %d", tt.spent, tt.limit, got, tt.want)
		}
	}
}

func TestRemainingBudget(t *testing.T) {
	if got := RemainingBudget(dec("5"), dec("20")); !got.Equal(dec("15")) {
		t.Errorf("RemainingBudget = %s, want 15", got)
	}
	if got := RemainingBudget(dec("25"), dec("20")); !got.IsZero() {
		t.Errorf("overspent RemainingBudget = %s, want 0 (floored)", got)
	}
}

func TestGoal_Progress(t *testing.T) {
	g := Goal{Target: dec("500"), Saved: dec("125")}
	if got := g.ProgressPercent(); got != 25 {
		t.Errorf("ProgressPercent = %d, want 25", got)
	}
	if g.Reached() {
		t.Error("goal should not be reached at 25%")
	}

	g.Saved = dec("600")
	if got := g.ProgressPercent(); got != 100 {
		t.Errorf("overshoot ProgressPercent = %d, want 100 (clamped)", got)
	}
	if !g.Reached() {
		t.Error("goal should be reached when saved exceeds target")
	}
}

func TestPreconditionError(t *testing.T) {
	err := Precondition(ReasonOverLimit)

	if !IsPrecondition(err) {
		t.Error("IsPrecondition should match")
	}
	if err.Error() != ReasonOverLimit {
		t.Errorf("Error() = %q, want the display string itself", err.Error())
	}

	wrapped := errors.New("plain")
	if IsPrecondition(wrapped) {
		t.Error("plain errors are not preconditions")
	}
	if IsPrecondition(ErrTemplateNotFound) {
		t.Error("not-found sentinels are not preconditions")
	}
}
