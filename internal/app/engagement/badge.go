package engagement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/metrics"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// BadgeService evaluates the badge rule set against a user's aggregate stats
// and awards each badge at most once per user, ever. Only the challenge
// completion path invokes it.
type BadgeService struct {
	db    *sqlite.DB
	rules []domain.BadgeRule
}

// NewBadgeService creates a badge service with the full rule catalog.
func NewBadgeService(db *sqlite.DB) *BadgeService {
	return &BadgeService{db: db, rules: AllBadges()}
}

// AwardEligible evaluates all rules, in catalog order, against the user's
// current stats plus the difficulty of the challenge just completed. For
// each rule that fires and is not already held, one UserBadge row is
// inserted and its display name collected. One insert failing does not
// block later rules; partial award sets are accepted.
func (b *BadgeService) AwardEligible(userID string, latest domain.Difficulty) ([]string, error) {
	completed, totalXP, err := b.db.CompletedStats(userID)
	if err != nil {
		return nil, fmt.Errorf("completed stats: %w", err)
	}
	held, err := b.db.HeldBadgeKeys(userID)
	if err != nil {
		return nil, fmt.Errorf("held badges: %w", err)
	}

	stats := domain.BadgeStats{
		CompletedCount:   completed,
		TotalXP:          totalXP,
		LatestDifficulty: latest,
	}

	var earned []string
	var firstErr error
	now := time.Now()
	for _, rule := range b.rules {
		if held[rule.Key] {
			continue
		}
		if rule.Predicate == nil || !rule.Predicate(stats) {
			continue
		}

		isNew, err := b.db.AwardBadge(domain.UserBadge{
			ID:          uuid.New().String(),
			UserID:      userID,
			BadgeKey:    rule.Key,
			Name:        rule.Name,
			Description: rule.Description,
			Icon:        rule.Icon,
			EarnedAt:    now,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("award %s: %w", rule.Key, err)
			}
			continue
		}
		if isNew {
			earned = append(earned, rule.Name)
			metrics.BadgesAwarded.WithLabelValues(rule.Key).Inc()
		}
	}

	return earned, firstErr
}

// Badges returns all badges the user holds.
func (b *BadgeService) Badges(userID string) ([]domain.UserBadge, error) {
	return b.db.ListBadges(userID)
}

// RuleCount returns the total number of defined badge rules.
func (b *BadgeService) RuleCount() int {
	return len(b.rules)
}

// ─── Badge Catalog ──────────────────────────────────────────────────────────
// Fixed, ordered rule set. Each badge fires at most once per user for the
// lifetime of the account, even if the condition holds again later.

// AllBadges returns the full badge catalog.
func AllBadges() []domain.BadgeRule {
	return []domain.BadgeRule{
		{
			Key: "first_challenge", Name: "First Steps", Icon: "🎯",
			Description: "Complete your first spending challenge.",
			Predicate:   func(s domain.BadgeStats) bool { return s.CompletedCount >= 1 },
		},
		{
			Key: "five_completed", Name: "Streak Builder", Icon: "🖐️",
			Description: "Complete five spending challenges.",
			Predicate:   func(s domain.BadgeStats) bool { return s.CompletedCount >= 5 },
		},
		{
			Key: "ten_completed", Name: "Challenge Veteran", Icon: "🏆",
			Description: "Complete ten spending challenges.",
			Predicate:   func(s domain.BadgeStats) bool { return s.CompletedCount >= 10 },
		},
		{
			Key: "hard_finisher", Name: "Iron Will", Icon: "💪",
			Description: "Complete a HARD difficulty challenge.",
			Predicate:   func(s domain.BadgeStats) bool { return s.LatestDifficulty == domain.DifficultyHard },
		},
		{
			Key: "xp_500", Name: "Point Collector", Icon: "⭐",
			Description: "Earn 500 lifetime XP.",
			Predicate:   func(s domain.BadgeStats) bool { return s.TotalXP >= 500 },
		},
		{
			Key: "xp_1000", Name: "XP Hoarder", Icon: "🌟",
			Description: "Earn 1000 lifetime XP.",
			Predicate:   func(s domain.BadgeStats) bool { return s.TotalXP >= 1000 },
		},
	}
}
