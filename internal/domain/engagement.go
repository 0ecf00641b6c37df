package domain

import "time"

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeStats is the aggregate snapshot badge predicates are evaluated against.
// Everything here is recomputed from history at evaluation time.
type BadgeStats struct {
	CompletedCount   int        `json:"completed_count"`
	TotalXP          int64      `json:"total_xp"`
	LatestDifficulty Difficulty `json:"latest_difficulty"`
}

// BadgeRule defines a single badge: its key, display data, and the predicate
// deciding whether a user's stats qualify. Rules evaluate in catalog order.
type BadgeRule struct {
	Key         string                `json:"key"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Icon        string                `json:"icon"`
	Predicate   func(BadgeStats) bool `json:"-"`
}

// UserBadge records a badge a user holds. Awarded at most once per
// (user, badge_key) for the lifetime of the account; never mutated or deleted.
type UserBadge struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BadgeKey    string    `json:"badge_key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// ─── Level / XP Types ───────────────────────────────────────────────────────

// LevelTier is one row of the fixed ascending level table.
type LevelTier struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Threshold int64  `json:"threshold"`
}

// LevelInfo is the resolved level for a given XP total.
type LevelInfo struct {
	TotalXP   int64  `json:"total_xp"`
	Level     int    `json:"level"`
	Title     string `json:"title"`
	XPForNext int64  `json:"xp_for_next"`
}
