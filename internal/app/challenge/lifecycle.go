// Package challenge implements the challenge lifecycle state machine:
// accept with anti-duplicate rules, live progress refresh, lazy
// expiry-failure, completion with XP snapshot and badge evaluation, and
// cancellation. Every transition is idempotent-by-precondition; there are
// no retries anywhere.
package challenge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/app/engagement"
	"github.com/cashmind/engine/internal/app/spending"
	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/metrics"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// Manager owns the lifecycle of user challenges.
type Manager struct {
	db      *sqlite.DB
	spender *spending.Aggregator
	badges  *engagement.BadgeService
}

// NewManager creates a lifecycle manager.
func NewManager(db *sqlite.DB, spender *spending.Aggregator, badges *engagement.BadgeService) *Manager {
	return &Manager{db: db, spender: spender, badges: badges}
}

// Lists groups a user's challenges by lifecycle state. Active entries carry
// freshly derived progress figures.
type Lists struct {
	Active    []domain.ChallengeView `json:"active"`
	Completed []domain.ChallengeView `json:"completed"`
	Failed    []domain.ChallengeView `json:"failed"`
	Cancelled []domain.ChallengeView `json:"cancelled"`
}

// Accept opts the user into a template. Preconditions, checked in order with
// first failure winning: the template exists; no active challenge for this
// (user, template); no active challenge sharing the template's category.
// The storage layer's partial unique indexes back the two duplicate checks
// under concurrency.
func (m *Manager) Accept(userID, templateID string) (*domain.UserChallenge, error) {
	return m.AcceptAt(userID, templateID, time.Now())
}

// AcceptAt is Accept with an explicit clock, for testability.
func (m *Manager) AcceptAt(userID, templateID string, now time.Time) (*domain.UserChallenge, error) {
	tmpl, err := m.db.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if tmpl == nil {
		return nil, domain.ErrTemplateNotFound
	}

	dup, err := m.db.HasActiveChallenge(userID, templateID)
	if err != nil {
		return nil, fmt.Errorf("check active: %w", err)
	}
	if dup {
		return nil, domain.Precondition(domain.ReasonAlreadyActive)
	}

	occupied, err := m.db.HasActiveCategoryChallenge(userID, tmpl.Category)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if occupied {
		return nil, domain.Precondition(domain.ReasonCategoryOccupied)
	}

	c := domain.UserChallenge{
		ID:         uuid.New().String(),
		UserID:     userID,
		TemplateID: templateID,
		Status:     domain.ChallengeActive,
		Spent:      decimal.Zero,
		StartedAt:  now,
		EndsAt:     now.AddDate(0, 0, tmpl.DurationDays),
	}

	if err := m.db.InsertUserChallenge(c, tmpl.Category); err != nil {
		// A concurrent accept can slip past the reads above; the unique
		// index is the authoritative duplicate signal.
		if sqlite.IsUniqueViolation(err, "template_id") {
			return nil, domain.Precondition(domain.ReasonAlreadyActive)
		}
		if sqlite.IsUniqueViolation(err, "category") {
			return nil, domain.Precondition(domain.ReasonCategoryOccupied)
		}
		return nil, fmt.Errorf("insert challenge: %w", err)
	}

	metrics.ChallengesAccepted.Inc()
	return &c, nil
}

// List returns the user's challenges grouped by state. Viewing is a
// side-effecting read: each active challenge's spent figure is re-aggregated
// and written through, and expired over-limit challenges transition to
// failed/over_spending right here — there is no background sweep.
func (m *Manager) List(userID string) (Lists, error) {
	return m.ListAt(userID, time.Now())
}

// ListAt is List with an explicit clock, for testability.
func (m *Manager) ListAt(userID string, now time.Time) (Lists, error) {
	views, err := m.db.ListChallengeViews(userID)
	if err != nil {
		return Lists{}, fmt.Errorf("list challenges: %w", err)
	}

	var lists Lists
	for _, v := range views {
		if v.Status == domain.ChallengeActive {
			if err := m.refresh(&v, now); err != nil {
				return Lists{}, err
			}
		}
		switch v.Status {
		case domain.ChallengeActive:
			lists.Active = append(lists.Active, v)
		case domain.ChallengeCompleted:
			lists.Completed = append(lists.Completed, v)
		case domain.ChallengeFailed:
			lists.Failed = append(lists.Failed, v)
		case domain.ChallengeCancelled:
			lists.Cancelled = append(lists.Cancelled, v)
		}
	}
	return lists, nil
}

// refresh recomputes an active challenge's live spending, writes it through
// when changed, derives the progress figures, and applies lazy
// expiry-failure. Expired challenges that stayed within the limit remain
// active awaiting explicit completion — success is never auto-finalized.
func (m *Manager) refresh(v *domain.ChallengeView, now time.Time) error {
	spent, err := m.spender.ComputeSpent(v.UserID, v.Category, v.StartedAt, v.EndsAt)
	if err != nil {
		return err
	}

	if !spent.Equal(v.Spent) {
		if err := m.db.UpdateChallengeSpent(v.ID, spent.String()); err != nil {
			return fmt.Errorf("update spent: %w", err)
		}
		v.Spent = spent
	}

	v.DaysRemaining = v.DaysLeft(now)
	v.ConsumedPercent = domain.ConsumedPercent(spent, v.LimitAmount)
	v.Remaining = domain.RemainingBudget(spent, v.LimitAmount)

	if v.DaysRemaining == 0 && v.Expired(now) && spent.GreaterThan(v.LimitAmount) {
		failed, err := m.db.FailUserChallenge(v.ID, domain.FailureOverSpending, spent.String())
		if err != nil {
			return fmt.Errorf("fail expired challenge: %w", err)
		}
		if failed {
			v.Status = domain.ChallengeFailed
			v.FailureReason = domain.FailureOverSpending
			metrics.LazyExpirations.Inc()
			metrics.ChallengesFinished.WithLabelValues("failed").Inc()
		}
	}
	return nil
}

// Complete transitions an active challenge to completed, snapshotting
// xp_earned from the template and then running badge evaluation. Spent is
// recomputed fresh at completion time — a stale client value is never
// trusted. This is the single point where XP is minted.
func (m *Manager) Complete(userID, challengeID string) ([]string, error) {
	return m.CompleteAt(userID, challengeID, time.Now())
}

// CompleteAt is Complete with an explicit clock, for testability.
func (m *Manager) CompleteAt(userID, challengeID string, now time.Time) ([]string, error) {
	v, err := m.db.GetChallengeView(userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if v == nil {
		// Includes rows owned by someone else.
		return nil, domain.ErrChallengeNotFound
	}
	if v.Status != domain.ChallengeActive {
		return nil, domain.Precondition(domain.ReasonNotActive)
	}

	spent, err := m.spender.ComputeSpent(userID, v.Category, v.StartedAt, v.EndsAt)
	if err != nil {
		return nil, err
	}
	if spent.GreaterThan(v.LimitAmount) {
		return nil, domain.Precondition(domain.ReasonOverLimit)
	}

	ok, err := m.db.CompleteUserChallenge(v.ID, v.XPReward, spent.String())
	if err != nil {
		return nil, fmt.Errorf("complete challenge: %w", err)
	}
	if !ok {
		// Lost a race with another terminal transition.
		return nil, domain.Precondition(domain.ReasonNotActive)
	}

	metrics.ChallengesFinished.WithLabelValues("completed").Inc()
	metrics.XPMinted.Add(float64(v.XPReward))

	// The status update above is visible to the badge reads below —
	// sequential within the same operation.
	earned, err := m.badges.AwardEligible(userID, v.Difficulty)
	if err != nil {
		// The completion itself stands; partial award sets are accepted.
		return earned, err
	}
	return earned, nil
}

// Cancel transitions an active challenge to cancelled. The conditional
// update makes it a no-op success when the challenge is already terminal or
// does not exist — the two cases are deliberately not distinguished.
func (m *Manager) Cancel(userID, challengeID string) error {
	cancelled, err := m.db.CancelUserChallenge(userID, challengeID)
	if err != nil {
		return fmt.Errorf("cancel challenge: %w", err)
	}
	if cancelled {
		metrics.ChallengesFinished.WithLabelValues("cancelled").Inc()
	}
	return nil
}

// Templates returns the catalog, recommended entries first.
func (m *Manager) Templates() ([]domain.ChallengeTemplate, error) {
	return m.db.ListTemplates()
}
