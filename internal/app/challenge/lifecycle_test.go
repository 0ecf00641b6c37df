package challenge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/app/engagement"
	"github.com/cashmind/engine/internal/app/spending"
	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

func newTestManager(t *testing.T) (*Manager, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	spender := spending.NewAggregator(db)
	badges := engagement.NewBadgeService(db)
	return NewManager(db, spender, badges), db
}

func seedTemplate(t *testing.T, db *sqlite.DB, id, category string, limit int64, days int, difficulty domain.Difficulty, xp int64) {
	t.Helper()
	err := db.UpsertTemplate(domain.ChallengeTemplate{
		ID:           id,
		Title:        "Challenge " + id,
		Difficulty:   difficulty,
		XPReward:     xp,
		Category:     category,
		LimitAmount:  decimal.NewFromInt(limit),
		DurationDays: days,
	})
	if err != nil {
		t.Fatalf("UpsertTemplate(%s) error: %v", id, err)
	}
}

func spend(t *testing.T, db *sqlite.DB, userID, category, amount string, at time.Time) {
	t.Helper()
	err := db.InsertTransaction(domain.Transaction{
		ID:       uuid.New().String(),
		UserID:   userID,
		Type:     domain.TransactionExpense,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     at,
	})
	if err != nil {
		t.Fatalf("InsertTransaction() error: %v", err)
	}
}

var testClock = time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

// ─── Accept ─────────────────────────────────────────────────────────────────

func TestAccept_Success(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatalf("AcceptAt() error: %v", err)
	}
	if c.Status != domain.ChallengeActive {
		t.Errorf("Status = %q, want active", c.Status)
	}
	if !c.Spent.IsZero() {
		t.Errorf("Spent = %s, want 0", c.Spent)
	}
	if c.XPEarned != 0 {
		t.Errorf("XPEarned = %d, want 0 until completion", c.XPEarned)
	}
	if want := testClock.AddDate(0, 0, 7); !c.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", c.EndsAt, want)
	}
}

func TestAccept_TemplateNotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.AcceptAt("alice", "ghost", testClock)
	if err != domain.ErrTemplateNotFound {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestAccept_DuplicateTemplate(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Fatal(err)
	}

	_, err := m.AcceptAt("alice", "t1", testClock)
	if !domain.IsPrecondition(err) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if err.Error() != domain.ReasonAlreadyActive {
		t.Errorf("message = %q, want %q", err.Error(), domain.ReasonAlreadyActive)
	}
}

func TestAccept_CategoryOccupied(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)
	seedTemplate(t, db, "t2", "coffee", 10, 14, domain.DifficultyMedium, 120)

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Fatal(err)
	}

	_, err := m.AcceptAt("alice", "t2", testClock)
	if !domain.IsPrecondition(err) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if err.Error() != domain.ReasonCategoryOccupied {
		t.Errorf("message = %q, want %q", err.Error(), domain.ReasonCategoryOccupied)
	}

	// Another user is unaffected by alice's active challenge.
	if _, err := m.AcceptAt("bob", "t2", testClock); err != nil {
		t.Errorf("bob's accept error: %v", err)
	}
}

func TestAccept_PrecedenceTemplateBeforeCategory(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Fatal(err)
	}

	// Re-accepting the same template trips the template rule, not the
	// category rule, even though both hold.
	_, err := m.AcceptAt("alice", "t1", testClock)
	if err == nil || err.Error() != domain.ReasonAlreadyActive {
		t.Errorf("err = %v, want %q", err, domain.ReasonAlreadyActive)
	}
}

func TestAccept_AfterTerminalFreesSlot(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Cancel("alice", c.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Errorf("accept after cancel error: %v", err)
	}
}

// ─── List / Refresh ─────────────────────────────────────────────────────────

func TestList_RefreshesSpentAndProgress(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}

	spend(t, db, "alice", "coffee", "4.50", testClock.AddDate(0, 0, 1))
	spend(t, db, "alice", "coffee", "5.50", testClock.AddDate(0, 0, 2))
	// Outside the window: before start.
	spend(t, db, "alice", "coffee", "99", testClock.AddDate(0, 0, -1))
	// Different category.
	spend(t, db, "alice", "dining", "50", testClock.AddDate(0, 0, 1))

	lists, err := m.ListAt("alice", testClock.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ListAt() error: %v", err)
	}
	if len(lists.Active) != 1 {
		t.Fatalf("active = %d, want 1", len(lists.Active))
	}

	v := lists.Active[0]
	if !v.Spent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Spent = %s, want 10", v.Spent)
	}
	if v.ConsumedPercent != 50 {
		t.Errorf("ConsumedPercent = %d, want 50", v.ConsumedPercent)
	}
	if !v.Remaining.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Remaining = %s, want 10", v.Remaining)
	}
	if v.DaysRemaining != 4 {
		t.Errorf("DaysRemaining = %d, want 4", v.DaysRemaining)
	}

	// The refreshed figure is written through.
	stored, err := db.GetChallengeView("alice", c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Spent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("stored Spent = %s, want 10", stored.Spent)
	}
}

func TestList_LazyExpiryFailsOverLimit(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	spend(t, db, "alice", "coffee", "25", testClock.AddDate(0, 0, 1))

	// Viewed after expiry: the over-limit challenge fails right here.
	lists, err := m.ListAt("alice", testClock.AddDate(0, 0, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(lists.Failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(lists.Failed))
	}
	if lists.Failed[0].FailureReason != domain.FailureOverSpending {
		t.Errorf("reason = %q, want over_spending", lists.Failed[0].FailureReason)
	}
	if lists.Failed[0].XPEarned != 0 {
		t.Errorf("XPEarned = %d, want 0 on failure", lists.Failed[0].XPEarned)
	}

	// The transition persisted.
	stored, _ := db.GetChallengeView("alice", c.ID)
	if stored.Status != domain.ChallengeFailed {
		t.Errorf("stored status = %q, want failed", stored.Status)
	}
}

func TestList_ExpiredUnderLimitStaysActive(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Fatal(err)
	}
	spend(t, db, "alice", "coffee", "5", testClock.AddDate(0, 0, 1))

	// Success is never auto-finalized: the user must complete explicitly.
	lists, err := m.ListAt("alice", testClock.AddDate(0, 0, 8))
	if err != nil {
		t.Fatal(err)
	}
	if len(lists.Active) != 1 {
		t.Fatalf("active = %d, want 1 (awaiting explicit completion)", len(lists.Active))
	}
	if lists.Active[0].DaysRemaining != 0 {
		t.Errorf("DaysRemaining = %d, want 0", lists.Active[0].DaysRemaining)
	}
}

func TestList_ZeroLimitConsumedPercent(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "delivery", 0, 7, domain.DifficultyHard, 300)

	if _, err := m.AcceptAt("alice", "t1", testClock); err != nil {
		t.Fatal(err)
	}

	lists, err := m.ListAt("alice", testClock.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if lists.Active[0].ConsumedPercent != 0 {
		t.Errorf("no spending: ConsumedPercent = %d, want 0", lists.Active[0].ConsumedPercent)
	}

	spend(t, db, "alice", "delivery", "0.01", testClock.AddDate(0, 0, 2))
	lists, err = m.ListAt("alice", testClock.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if lists.Active[0].ConsumedPercent != 100 {
		t.Errorf("any spending against a zero limit: ConsumedPercent = %d, want 100", lists.Active[0].ConsumedPercent)
	}
}

// ─── Complete ───────────────────────────────────────────────────────────────

func TestComplete_MintsXPAndAwardsBadges(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	spend(t, db, "alice", "coffee", "12", testClock.AddDate(0, 0, 1))

	earned, err := m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("CompleteAt() error: %v", err)
	}

	if len(earned) != 1 || earned[0] != "First Steps" {
		t.Errorf("earned = %v, want [First Steps]", earned)
	}

	v, _ := db.GetChallengeView("alice", c.ID)
	if v.Status != domain.ChallengeCompleted {
		t.Errorf("status = %q, want completed", v.Status)
	}
	if v.XPEarned != 50 {
		t.Errorf("XPEarned = %d, want the template snapshot 50", v.XPEarned)
	}
	if !v.Spent.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Spent = %s, want the fresh aggregate 12", v.Spent)
	}
}

func TestComplete_XPSnapshotSurvivesTemplateEdit(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// Raising the reward afterwards does not change history.
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 500)

	_, totalXP, err := db.CompletedStats("alice")
	if err != nil {
		t.Fatal(err)
	}
	if totalXP != 50 {
		t.Errorf("totalXP = %d, want the snapshotted 50", totalXP)
	}
}

func TestComplete_OverLimitRejected(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	spend(t, db, "alice", "coffee", "20.01", testClock.AddDate(0, 0, 1))

	_, err = m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 2))
	if !domain.IsPrecondition(err) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if err.Error() != domain.ReasonOverLimit {
		t.Errorf("message = %q, want %q", err.Error(), domain.ReasonOverLimit)
	}

	// The challenge stays active: spending exactly at the limit is fine later.
	v, _ := db.GetChallengeView("alice", c.ID)
	if v.Status != domain.ChallengeActive {
		t.Errorf("status = %q, want still active", v.Status)
	}
}

func TestComplete_ExactlyAtLimitSucceeds(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	spend(t, db, "alice", "coffee", "20", testClock.AddDate(0, 0, 1))

	if _, err := m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 2)); err != nil {
		t.Errorf("spending exactly the limit should complete, got %v", err)
	}
}

func TestComplete_NotActive(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// Completing twice mints nothing.
	_, err = m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 2))
	if err == nil || err.Error() != domain.ReasonNotActive {
		t.Errorf("err = %v, want %q", err, domain.ReasonNotActive)
	}

	_, totalXP, _ := db.CompletedStats("alice")
	if totalXP != 50 {
		t.Errorf("totalXP = %d, want 50 (minted once)", totalXP)
	}
}

func TestComplete_NotFoundAndForeignRows(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	if _, err := m.CompleteAt("alice", "ghost", testClock); err != domain.ErrChallengeNotFound {
		t.Errorf("missing id: err = %v, want ErrChallengeNotFound", err)
	}

	c, err := m.AcceptAt("bob", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	// Someone else's challenge is indistinguishable from a missing one.
	if _, err := m.CompleteAt("alice", c.ID, testClock); err != domain.ErrChallengeNotFound {
		t.Errorf("foreign row: err = %v, want ErrChallengeNotFound", err)
	}
}

func TestComplete_HardChallengeAwardsIronWill(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "entertainment", 40, 30, domain.DifficultyHard, 250)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}

	earned, err := m.CompleteAt("alice", c.ID, testClock.AddDate(0, 0, 10))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"First Steps": true, "Iron Will": true}
	if len(earned) != 2 {
		t.Fatalf("earned = %v, want First Steps and Iron Will", earned)
	}
	for _, name := range earned {
		if !want[name] {
			t.Errorf("unexpected badge %q", name)
		}
	}
}

// ─── Cancel ─────────────────────────────────────────────────────────────────

func TestCancel_NoXPAndNoOpOnMissing(t *testing.T) {
	m, db := newTestManager(t)
	seedTemplate(t, db, "t1", "coffee", 20, 7, domain.DifficultyEasy, 50)

	c, err := m.AcceptAt("alice", "t1", testClock)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Cancel("alice", c.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	v, _ := db.GetChallengeView("alice", c.ID)
	if v.Status != domain.ChallengeCancelled {
		t.Errorf("status = %q, want cancelled", v.Status)
	}
	if v.XPEarned != 0 {
		t.Errorf("XPEarned = %d, want 0", v.XPEarned)
	}

	// Cancelling again, or cancelling nonsense, is a quiet no-op.
	if err := m.Cancel("alice", c.ID); err != nil {
		t.Errorf("second cancel = %v, want nil", err)
	}
	if err := m.Cancel("alice", "ghost"); err != nil {
		t.Errorf("cancel missing = %v, want nil", err)
	}
}
