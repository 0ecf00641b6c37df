package engagement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// completeChallenge runs one accept+complete directly through storage so the
// engagement layer sees realistic history.
func completeChallenge(t *testing.T, db *sqlite.DB, id, userID, templateID, category string, xp int64) {
	t.Helper()
	now := time.Now()
	err := db.InsertUserChallenge(domain.UserChallenge{
		ID: id, UserID: userID, TemplateID: templateID,
		Status: domain.ChallengeActive, Spent: decimal.Zero,
		StartedAt: now, EndsAt: now.AddDate(0, 0, 7),
	}, category)
	if err != nil {
		t.Fatalf("InsertUserChallenge(%s) error: %v", id, err)
	}
	ok, err := db.CompleteUserChallenge(id, xp, "0")
	if err != nil || !ok {
		t.Fatalf("CompleteUserChallenge(%s) = %v, %v", id, ok, err)
	}
}

// ─── Level Ladder ───────────────────────────────────────────────────────────

func TestComputeLevel(t *testing.T) {
	tests := []struct {
		totalXP   int64
		level     int
		title     string
		xpForNext int64
	}{
		{0, 1, "Beginner Saver", 200},
		{199, 1, "Beginner Saver", 200},
		{200, 2, "Smart Spender", 500},
		{499, 2, "Smart Spender", 500},
		{500, 3, "Disciplined Saver", 1000},
		{1000, 4, "Budget Master", 2000},
		{2000, 5, "Finance Guru", 5000},
		{4999, 5, "Finance Guru", 5000},
		{5000, 6, "Money Legend", 6000},
		{7500, 6, "Money Legend", 6000},
		{-10, 1, "Beginner Saver", 200}, // Clamped
	}

	for _, tt := range tests {
		got := ComputeLevel(tt.totalXP)
		if got.Level != tt.level || got.Title != tt.title || got.XPForNext != tt.xpForNext {
			t.Errorf("ComputeLevel(%d) = {L%d %q next=%d}, want {L%d %q next=%d}",
				tt.totalXP, got.Level, got.Title, got.XPForNext,
				tt.level, tt.title, tt.xpForNext)
		}
	}
}

func TestLevelTable_Ascending(t *testing.T) {
	table := LevelTable()
	if len(table) != 6 {
		t.Fatalf("len = %d, want 6", len(table))
	}
	for i := 1; i < len(table); i++ {
		if table[i].Threshold <= table[i-1].Threshold {
			t.Errorf("thresholds not strictly ascending at index %d", i)
		}
		if table[i].Level != table[i-1].Level+1 {
			t.Errorf("levels not consecutive at index %d", i)
		}
	}
}

func TestUserLevel_RecomputedFromHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewLevelService(db)

	seedTpl := domain.ChallengeTemplate{
		ID: "t1", Title: "T", Difficulty: domain.DifficultyEasy,
		XPReward: 120, Category: "coffee",
		LimitAmount: decimal.NewFromInt(10), DurationDays: 7,
	}
	if err := db.UpsertTemplate(seedTpl); err != nil {
		t.Fatal(err)
	}

	info, err := svc.UserLevel("alice")
	if err != nil {
		t.Fatal(err)
	}
	if info.Level != 1 || info.TotalXP != 0 {
		t.Errorf("fresh user = L%d/%dxp, want L1/0xp", info.Level, info.TotalXP)
	}

	completeChallenge(t, db, "c1", "alice", "t1", "coffee", 120)
	completeChallenge(t, db, "c2", "alice", "t1", "dining", 120)

	info, err = svc.UserLevel("alice")
	if err != nil {
		t.Fatal(err)
	}
	if info.TotalXP != 240 {
		t.Errorf("TotalXP = %d, want 240", info.TotalXP)
	}
	if info.Level != 2 {
		t.Errorf("Level = %d, want 2", info.Level)
	}
}

// ─── Badge Rules ────────────────────────────────────────────────────────────

func TestAllBadges_KeysUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range AllBadges() {
		if seen[rule.Key] {
			t.Errorf("duplicate badge key %q", rule.Key)
		}
		seen[rule.Key] = true
		if rule.Predicate == nil {
			t.Errorf("badge %q has no predicate", rule.Key)
		}
	}
}

func TestAwardEligible_FirstCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewBadgeService(db)

	if err := db.UpsertTemplate(domain.ChallengeTemplate{
		ID: "t1", Title: "T", Difficulty: domain.DifficultyEasy,
		Category: "coffee", LimitAmount: decimal.NewFromInt(10), DurationDays: 7,
	}); err != nil {
		t.Fatal(err)
	}
	completeChallenge(t, db, "c1", "alice", "t1", "coffee", 50)

	earned, err := svc.AwardEligible("alice", domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("AwardEligible() error: %v", err)
	}
	if len(earned) != 1 || earned[0] != "First Steps" {
		t.Errorf("earned = %v, want [First Steps]", earned)
	}
}

func TestAwardEligible_NeverTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewBadgeService(db)

	if err := db.UpsertTemplate(domain.ChallengeTemplate{
		ID: "t1", Title: "T", Difficulty: domain.DifficultyEasy,
		Category: "coffee", LimitAmount: decimal.NewFromInt(10), DurationDays: 7,
	}); err != nil {
		t.Fatal(err)
	}
	completeChallenge(t, db, "c1", "alice", "t1", "coffee", 50)

	if _, err := svc.AwardEligible("alice", domain.DifficultyEasy); err != nil {
		t.Fatal(err)
	}
	earned, err := svc.AwardEligible("alice", domain.DifficultyEasy)
	if err != nil {
		t.Fatal(err)
	}
	if len(earned) != 0 {
		t.Errorf("second evaluation earned %v, want nothing", earned)
	}

	badges, _ := svc.Badges("alice")
	if len(badges) != 1 {
		t.Errorf("held badges = %d, want 1", len(badges))
	}
}

func TestAwardEligible_XPThresholds(t *testing.T) {
	db := newTestDB(t)
	svc := NewBadgeService(db)

	if err := db.UpsertTemplate(domain.ChallengeTemplate{
		ID: "t1", Title: "T", Difficulty: domain.DifficultyMedium,
		Category: "coffee", LimitAmount: decimal.NewFromInt(10), DurationDays: 7,
	}); err != nil {
		t.Fatal(err)
	}

	// Five completions at 120 XP each: 600 total.
	for _, cat := range []string{"a", "b", "c", "d", "e"} {
		completeChallenge(t, db, "c"+cat, "alice", "t1", cat, 120)
	}

	earned, err := svc.AwardEligible("alice", domain.DifficultyMedium)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"First Steps":     true, // ≥1 completed
		"Streak Builder":  true, // ≥5 completed
		"Point Collector": true, // ≥500 XP
	}
	if len(earned) != len(want) {
		t.Fatalf("earned = %v, want %v", earned, want)
	}
	for _, name := range earned {
		if !want[name] {
			t.Errorf("unexpected badge %q", name)
		}
	}
}
