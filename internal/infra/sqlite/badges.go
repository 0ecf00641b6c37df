package sqlite

import (
	"time"

	"github.com/cashmind/engine/internal/domain"
)

// ─── User Badges ────────────────────────────────────────────────────────────

// AwardBadge records a badge for a user. Returns false if the user already
// holds the badge_key (idempotent — the UNIQUE(user_id, badge_key) constraint
// is the authoritative guard).
func (d *DB) AwardBadge(b domain.UserBadge) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO user_badges (id, user_id, badge_key, name, description, icon, earned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.BadgeKey, b.Name, b.Description, b.Icon, b.EarnedAt.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly awarded
}

// ListBadges returns all badges a user holds, newest first.
func (d *DB) ListBadges(userID string) ([]domain.UserBadge, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, badge_key, name, description, icon, earned_at
		 FROM user_badges WHERE user_id = ? ORDER BY earned_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.UserBadge
	for rows.Next() {
		var b domain.UserBadge
		var earnedAt int64
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeKey, &b.Name,
			&b.Description, &b.Icon, &earnedAt); err != nil {
			return nil, err
		}
		b.EarnedAt = time.Unix(earnedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// HeldBadgeKeys returns the set of badge_key values the user already holds.
func (d *DB) HeldBadgeKeys(userID string) (map[string]bool, error) {
	rows, err := d.db.Query(
		`SELECT badge_key FROM user_badges WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	held := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		held[key] = true
	}
	return held, rows.Err()
}
