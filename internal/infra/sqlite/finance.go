package sqlite

import (
	"database/sql"
	"time"

	"github.com/cashmind/engine/internal/domain"
)

// ─── Transactions ───────────────────────────────────────────────────────────

// TxFilter narrows a transaction listing. Zero values mean "any".
type TxFilter struct {
	Type     domain.TransactionType
	Category string
	From     time.Time
	To       time.Time
}

// InsertTransaction records a money movement.
func (d *DB) InsertTransaction(t domain.Transaction) error {
	_, err := d.db.Exec(
		`INSERT INTO transactions (id, user_id, type, category, amount, note, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Category, t.Amount.String(), t.Note, t.Date.Unix(),
	)
	return err
}

// DeleteTransaction removes a transaction, scoped to the owning user.
func (d *DB) DeleteTransaction(userID, id string) error {
	result, err := d.db.Exec(
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListTransactions returns a user's transactions matching the filter,
// newest first. Date bounds are inclusive.
func (d *DB) ListTransactions(userID string, f TxFilter) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, type, category, amount, note, date
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.Unix())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.Unix())
	}
	query += ` ORDER BY date DESC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var typ, amount string
	var date int64
	err := s.Scan(&t.ID, &t.UserID, &typ, &t.Category, &amount, &t.Note, &date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(typ)
	t.Date = time.Unix(date, 0)
	if t.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

// ─── Budgets ────────────────────────────────────────────────────────────────

// UpsertBudget inserts or updates the budget for (user, category, month).
func (d *DB) UpsertBudget(b domain.Budget) error {
	_, err := d.db.Exec(
		`INSERT INTO budgets (id, user_id, category, limit_amount, month)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category, month) DO UPDATE SET limit_amount=excluded.limit_amount`,
		b.ID, b.UserID, b.Category, b.Limit.String(), b.Month,
	)
	return err
}

// ListBudgets returns a user's budgets for one month.
func (d *DB) ListBudgets(userID, month string) ([]domain.Budget, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, category, limit_amount, month
		 FROM budgets WHERE user_id = ? AND month = ? ORDER BY category ASC`,
		userID, month,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var b domain.Budget
		var limit string
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &limit, &b.Month); err != nil {
			return nil, err
		}
		if b.Limit, err = parseAmount(limit); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes a budget, scoped to the owning user.
func (d *DB) DeleteBudget(userID, id string) error {
	result, err := d.db.Exec(
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// ─── Savings Goals ──────────────────────────────────────────────────────────

// InsertGoal creates a savings goal.
func (d *DB) InsertGoal(g domain.Goal) error {
	var deadline sql.NullInt64
	if g.Deadline != nil {
		deadline = sql.NullInt64{Int64: g.Deadline.Unix(), Valid: true}
	}
	_, err := d.db.Exec(
		`INSERT INTO goals (id, user_id, name, target, saved, deadline)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Target.String(), g.Saved.String(), deadline,
	)
	return err
}

// GetGoal retrieves one goal scoped to the owning user. (nil, nil) if missing.
func (d *DB) GetGoal(userID, id string) (*domain.Goal, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, name, target, saved, deadline
		 FROM goals WHERE id = ? AND user_id = ?`, id, userID,
	)
	return scanGoal(row)
}

// ListGoals returns all of a user's goals.
func (d *DB) ListGoals(userID string) ([]domain.Goal, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, name, target, saved, deadline
		 FROM goals WHERE user_id = ? ORDER BY name ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// UpdateGoalSaved overwrites the saved amount for a goal.
func (d *DB) UpdateGoalSaved(userID, id, saved string) error {
	result, err := d.db.Exec(
		`UPDATE goals SET saved = ? WHERE id = ? AND user_id = ?`, saved, id, userID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// DeleteGoal removes a goal, scoped to the owning user.
func (d *DB) DeleteGoal(userID, id string) error {
	result, err := d.db.Exec(
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(s scanner) (*domain.Goal, error) {
	var g domain.Goal
	var target, saved string
	var deadline sql.NullInt64
	err := s.Scan(&g.ID, &g.UserID, &g.Name, &target, &saved, &deadline)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if g.Target, err = parseAmount(target); err != nil {
		return nil, err
	}
	if g.Saved, err = parseAmount(saved); err != nil {
		return nil, err
	}
	if deadline.Valid {
		t := time.Unix(deadline.Int64, 0)
		g.Deadline = &t
	}
	return &g, nil
}
