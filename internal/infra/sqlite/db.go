// Package sqlite provides SQLite-based persistent storage for CashMind.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/cashmind.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "cashmind.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Challenge catalog — read-only to the engine, maintained by operators.
		`CREATE TABLE IF NOT EXISTS challenge_templates (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			difficulty     TEXT NOT NULL,
			xp_reward      INTEGER NOT NULL DEFAULT 0,
			category       TEXT NOT NULL,
			limit_amount   TEXT NOT NULL DEFAULT '0',
			duration_days  INTEGER NOT NULL,
			is_recommended BOOLEAN DEFAULT 0
		)`,

		// One row per acceptance. category is copied from the template at
		// accept time so the active-per-category invariant can be enforced
		// by the index below.
		`CREATE TABLE IF NOT EXISTS user_challenges (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			template_id    TEXT NOT NULL REFERENCES challenge_templates(id),
			category       TEXT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'active',
			failure_reason TEXT,
			xp_earned      INTEGER NOT NULL DEFAULT 0,
			spent          TEXT NOT NULL DEFAULT '0',
			started_at     INTEGER NOT NULL,
			ends_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_challenges_user ON user_challenges(user_id, status)`,
		// The duplicate-accept checks are check-then-act; these partial unique
		// indexes are the authoritative guard under concurrency.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_per_template
			ON user_challenges(user_id, template_id) WHERE status = 'active'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_per_category
			ON user_challenges(user_id, category) WHERE status = 'active'`,

		// Badges — at most one per (user, badge_key), ever.
		`CREATE TABLE IF NOT EXISTS user_badges (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			badge_key   TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon        TEXT NOT NULL DEFAULT '',
			earned_at   INTEGER NOT NULL,
			UNIQUE(user_id, badge_key)
		)`,

		// Transactions — owned by the transaction-entry subsystem; the
		// challenge engine only reads expense rows.
		`CREATE TABLE IF NOT EXISTS transactions (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL,
			type     TEXT NOT NULL,
			category TEXT NOT NULL,
			amount   TEXT NOT NULL,
			note     TEXT NOT NULL DEFAULT '',
			date     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user_cat_date ON transactions(user_id, category, date)`,

		// Monthly category budgets.
		`CREATE TABLE IF NOT EXISTS budgets (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			category     TEXT NOT NULL,
			limit_amount TEXT NOT NULL,
			month        TEXT NOT NULL,
			UNIQUE(user_id, category, month)
		)`,

		// Savings goals.
		`CREATE TABLE IF NOT EXISTS goals (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			target   TEXT NOT NULL,
			saved    TEXT NOT NULL DEFAULT '0',
			deadline INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure
// involving the given column. Constraint violation on insert is the
// authoritative duplicate signal for the anti-duplicate invariants.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, column)
}

// parseAmount converts a stored TEXT amount back to a decimal.
// Amounts are stored as decimal strings to keep cent-exact arithmetic.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
