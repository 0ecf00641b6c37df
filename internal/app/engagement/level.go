// Package engagement implements the gamification layer: the fixed level
// ladder over lifetime XP and the badge rule engine. XP is minted in exactly
// one place — challenge completion — and total XP is always recomputed from
// completed-challenge history, never stored.
package engagement

import (
	"fmt"

	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// levelTable is the fixed ascending ladder. Immutable configuration data,
// loaded once; the ladder has no ceiling — past the top tier the next
// threshold keeps incrementing by topTierStep.
var levelTable = []domain.LevelTier{
	{Level: 1, Title: "Beginner Saver", Threshold: 0},
	{Level: 2, Title: "Smart Spender", Threshold: 200},
	{Level: 3, Title: "Disciplined Saver", Threshold: 500},
	{Level: 4, Title: "Budget Master", Threshold: 1000},
	{Level: 5, Title: "Finance Guru", Threshold: 2000},
	{Level: 6, Title: "Money Legend", Threshold: 5000},
}

const topTierStep int64 = 1000

// LevelTable returns the ladder (for display).
func LevelTable() []domain.LevelTier {
	out := make([]domain.LevelTier, len(levelTable))
	copy(out, levelTable)
	return out
}

// ComputeLevel maps a lifetime XP total to its tier. The current level is the
// highest tier whose threshold ≤ totalXP; XPForNext is the next tier's
// threshold, or top threshold + topTierStep when already at the top.
func ComputeLevel(totalXP int64) domain.LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	info := domain.LevelInfo{TotalXP: totalXP}
	for i := len(levelTable) - 1; i >= 0; i-- {
		tier := levelTable[i]
		if totalXP >= tier.Threshold {
			info.Level = tier.Level
			info.Title = tier.Title
			if i+1 < len(levelTable) {
				info.XPForNext = levelTable[i+1].Threshold
			} else {
				info.XPForNext = tier.Threshold + topTierStep
			}
			return info
		}
	}

	// Threshold 0 always matches; unreachable.
	first := levelTable[0]
	info.Level = first.Level
	info.Title = first.Title
	info.XPForNext = levelTable[1].Threshold
	return info
}

// LevelService resolves a user's level from their completion history.
type LevelService struct {
	db *sqlite.DB
}

// NewLevelService creates a level service.
func NewLevelService(db *sqlite.DB) *LevelService {
	return &LevelService{db: db}
}

// UserLevel recomputes the user's total XP from completed challenges and
// resolves it against the ladder.
func (l *LevelService) UserLevel(userID string) (domain.LevelInfo, error) {
	_, totalXP, err := l.db.CompletedStats(userID)
	if err != nil {
		return domain.LevelInfo{}, fmt.Errorf("completed stats: %w", err)
	}
	return ComputeLevel(totalXP), nil
}
