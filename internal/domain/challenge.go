// Package domain holds the pure CashMind types.
// The challenge engine drives saving habits through spending challenges,
// XP levels, and permanent badges. No infrastructure dependencies here.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Challenge Catalog ──────────────────────────────────────────────────────

// Difficulty rates how hard a challenge template is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ChallengeTemplate is an immutable catalog entry maintained by operators.
// Users never mutate templates; accepting one spawns a UserChallenge.
type ChallengeTemplate struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Difficulty    Difficulty      `json:"difficulty"`
	XPReward      int64           `json:"xp_reward"`
	Category      string          `json:"category"`
	LimitAmount   decimal.Decimal `json:"limit_amount"`
	DurationDays  int             `json:"duration_days"`
	IsRecommended bool            `json:"is_recommended"`
}

// ─── Challenge Lifecycle ────────────────────────────────────────────────────

// ChallengeStatus is the lifecycle state of a UserChallenge.
// "active" is the only non-terminal state.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed || s == ChallengeCancelled
}

// FailureReason explains why a challenge left the active state without success.
type FailureReason string

const (
	FailureOverSpending  FailureReason = "over_spending"
	FailureUserCancelled FailureReason = "user_cancelled"
)

// UserChallenge is one user's attempt at a template.
// Born on accept, transitions exactly once to a terminal state, then kept as
// history. XPEarned is snapshotted from the template at completion time and
// never recomputed.
type UserChallenge struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	TemplateID    string          `json:"template_id"`
	Status        ChallengeStatus `json:"status"`
	FailureReason FailureReason   `json:"failure_reason,omitempty"`
	XPEarned      int64           `json:"xp_earned"`
	Spent         decimal.Decimal `json:"spent"`
	StartedAt     time.Time       `json:"started_at"`
	EndsAt        time.Time       `json:"ends_at"`
}

// DaysLeft returns whole days remaining until EndsAt, rounded up, floored at 0.
func (c UserChallenge) DaysLeft(now time.Time) int {
	remaining := c.EndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// Expired reports whether EndsAt is strictly in the past.
func (c UserChallenge) Expired(now time.Time) bool {
	return now.After(c.EndsAt)
}

// ChallengeView is a UserChallenge joined with its template and the derived
// progress figures the operations surface returns. Derived fields are computed
// on every read, never persisted.
type ChallengeView struct {
	UserChallenge
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Difficulty      Difficulty      `json:"difficulty"`
	Category        string          `json:"category"`
	LimitAmount     decimal.Decimal `json:"limit_amount"`
	XPReward        int64           `json:"xp_reward"`
	DaysRemaining   int             `json:"days_left"`
	ConsumedPercent int             `json:"consumed_percent"`
	Remaining       decimal.Decimal `json:"remaining"`
}

// ConsumedPercent returns how much of the limit has been spent, as a
// whole percentage clamped to [0, 100]. A zero limit consumed by any
// spending at all reads as 100.
func ConsumedPercent(spent, limit decimal.Decimal) int {
	if limit.IsPositive() {
		pct := spent.Div(limit).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		if pct > 100 {
			return 100
		}
		if pct < 0 {
			return 0
		}
		return int(pct)
	}
	if spent.IsPositive() {
		return 100
	}
	return 0
}

// RemainingBudget returns limit − spent, floored at zero.
func RemainingBudget(spent, limit decimal.Decimal) decimal.Decimal {
	rem := limit.Sub(spent)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}
