package sqlite

import (
	"database/sql"
	"time"

	"github.com/cashmind/engine/internal/domain"
)

// ─── Challenge Templates ────────────────────────────────────────────────────

// UpsertTemplate inserts or updates a catalog entry. Operator-only path;
// the engine itself never writes templates.
func (d *DB) UpsertTemplate(t domain.ChallengeTemplate) error {
	_, err := d.db.Exec(
		`INSERT INTO challenge_templates (id, title, description, difficulty, xp_reward, category, limit_amount, duration_days, is_recommended)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			difficulty=excluded.difficulty,
			xp_reward=excluded.xp_reward,
			category=excluded.category,
			limit_amount=excluded.limit_amount,
			duration_days=excluded.duration_days,
			is_recommended=excluded.is_recommended`,
		t.ID, t.Title, t.Description, string(t.Difficulty), t.XPReward,
		t.Category, t.LimitAmount.String(), t.DurationDays, t.IsRecommended,
	)
	return err
}

// GetTemplate retrieves a single template by id. Returns (nil, nil) when missing.
func (d *DB) GetTemplate(id string) (*domain.ChallengeTemplate, error) {
	row := d.db.QueryRow(
		`SELECT id, title, description, difficulty, xp_reward, category, limit_amount, duration_days, is_recommended
		 FROM challenge_templates WHERE id = ?`, id,
	)
	return scanTemplate(row)
}

// ListTemplates returns the catalog, recommended entries first.
func (d *DB) ListTemplates() ([]domain.ChallengeTemplate, error) {
	rows, err := d.db.Query(
		`SELECT id, title, description, difficulty, xp_reward, category, limit_amount, duration_days, is_recommended
		 FROM challenge_templates ORDER BY is_recommended DESC, title ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []domain.ChallengeTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func scanTemplate(s scanner) (*domain.ChallengeTemplate, error) {
	var t domain.ChallengeTemplate
	var difficulty, limit string
	err := s.Scan(&t.ID, &t.Title, &t.Description, &difficulty, &t.XPReward,
		&t.Category, &limit, &t.DurationDays, &t.IsRecommended)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}
	t.Difficulty = domain.Difficulty(difficulty)
	if t.LimitAmount, err = parseAmount(limit); err != nil {
		return nil, err
	}
	return &t, nil
}

// ─── User Challenges ────────────────────────────────────────────────────────

// InsertUserChallenge creates a new acceptance row. The partial unique
// indexes reject a second active row per (user, template) or (user, category);
// callers detect that with IsUniqueViolation.
func (d *DB) InsertUserChallenge(c domain.UserChallenge, category string) error {
	_, err := d.db.Exec(
		`INSERT INTO user_challenges (id, user_id, template_id, category, status, failure_reason, xp_earned, spent, started_at, ends_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.TemplateID, category, string(c.Status),
		nullableString(string(c.FailureReason)), c.XPEarned, c.Spent.String(),
		c.StartedAt.Unix(), c.EndsAt.Unix(),
	)
	return err
}

// HasActiveChallenge reports whether the user already has an active row for
// the template.
func (d *DB) HasActiveChallenge(userID, templateID string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND template_id = ? AND status = 'active'`,
		userID, templateID,
	).Scan(&count)
	return count > 0, err
}

// HasActiveCategoryChallenge reports whether the user already has an active
// row in the given budget category, across all templates.
func (d *DB) HasActiveCategoryChallenge(userID, category string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND category = ? AND status = 'active'`,
		userID, category,
	).Scan(&count)
	return count > 0, err
}

const challengeViewColumns = `
	uc.id, uc.user_id, uc.template_id, uc.status, uc.failure_reason,
	uc.xp_earned, uc.spent, uc.started_at, uc.ends_at,
	t.title, t.description, t.difficulty, t.category, t.limit_amount, t.xp_reward`

// GetChallengeView retrieves one challenge joined with its template, scoped
// to the owning user. A row owned by someone else is (nil, nil).
func (d *DB) GetChallengeView(userID, id string) (*domain.ChallengeView, error) {
	row := d.db.QueryRow(
		`SELECT `+challengeViewColumns+`
		 FROM user_challenges uc
		 JOIN challenge_templates t ON t.id = uc.template_id
		 WHERE uc.id = ? AND uc.user_id = ?`, id, userID,
	)
	return scanChallengeView(row)
}

// ListChallengeViews returns all of a user's challenges joined with their
// templates, newest first.
func (d *DB) ListChallengeViews(userID string) ([]domain.ChallengeView, error) {
	rows, err := d.db.Query(
		`SELECT `+challengeViewColumns+`
		 FROM user_challenges uc
		 JOIN challenge_templates t ON t.id = uc.template_id
		 WHERE uc.user_id = ? ORDER BY uc.started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.ChallengeView
	for rows.Next() {
		v, err := scanChallengeView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

// UpdateChallengeSpent persists a freshly aggregated spent figure.
// Write-through: the stored value is a cache of the aggregate, not truth.
func (d *DB) UpdateChallengeSpent(id string, spent string) error {
	_, err := d.db.Exec(
		`UPDATE user_challenges SET spent = ? WHERE id = ? AND status = 'active'`,
		spent, id,
	)
	return err
}

// CompleteUserChallenge transitions active → completed and snapshots the XP
// reward. Returns false if the row was not active (already terminal, or gone).
func (d *DB) CompleteUserChallenge(id string, xpEarned int64, spent string) (bool, error) {
	result, err := d.db.Exec(
		`UPDATE user_challenges SET status = 'completed', xp_earned = ?, spent = ?
		 WHERE id = ? AND status = 'active'`,
		xpEarned, spent, id,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// FailUserChallenge transitions active → failed with the given reason,
// persisting the final spent figure.
func (d *DB) FailUserChallenge(id string, reason domain.FailureReason, spent string) (bool, error) {
	result, err := d.db.Exec(
		`UPDATE user_challenges SET status = 'failed', failure_reason = ?, spent = ?
		 WHERE id = ? AND status = 'active'`,
		string(reason), spent, id,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CancelUserChallenge transitions active → cancelled. Not-active and
// not-found both report false; callers do not distinguish them.
func (d *DB) CancelUserChallenge(userID, id string) (bool, error) {
	result, err := d.db.Exec(
		`UPDATE user_challenges SET status = 'cancelled', failure_reason = ?, xp_earned = 0
		 WHERE id = ? AND user_id = ? AND status = 'active'`,
		string(domain.FailureUserCancelled), id, userID,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CompletedStats returns the user's completed-challenge count and the sum of
// snapshotted XP. Total XP is never stored; this is the source of truth.
func (d *DB) CompletedStats(userID string) (count int, totalXP int64, err error) {
	err = d.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(xp_earned), 0)
		 FROM user_challenges WHERE user_id = ? AND status = 'completed'`,
		userID,
	).Scan(&count, &totalXP)
	return count, totalXP, err
}

func scanChallengeView(s scanner) (*domain.ChallengeView, error) {
	var v domain.ChallengeView
	var status, difficulty, spent, limit string
	var failureReason sql.NullString
	var startedAt, endsAt int64

	err := s.Scan(&v.ID, &v.UserID, &v.TemplateID, &status, &failureReason,
		&v.XPEarned, &spent, &startedAt, &endsAt,
		&v.Title, &v.Description, &difficulty, &v.Category, &limit, &v.XPReward)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	v.Status = domain.ChallengeStatus(status)
	if failureReason.Valid {
		v.FailureReason = domain.FailureReason(failureReason.String)
	}
	v.Difficulty = domain.Difficulty(difficulty)
	v.StartedAt = time.Unix(startedAt, 0)
	v.EndsAt = time.Unix(endsAt, 0)
	if v.Spent, err = parseAmount(spent); err != nil {
		return nil, err
	}
	if v.LimitAmount, err = parseAmount(limit); err != nil {
		return nil, err
	}
	return &v, nil
}
