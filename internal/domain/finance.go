package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Transactions ───────────────────────────────────────────────────────────

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a single money movement recorded by the user.
// The challenge engine only ever reads expense rows.
type Transaction struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
	Date     time.Time       `json:"date"`
}

// CategoryTotal is one row of a per-category expense rollup.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ─── Budgets ────────────────────────────────────────────────────────────────

// Budget caps spending for one category in one calendar month.
// At most one budget per (user, category, month).
type Budget struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    string          `json:"month"` // "2006-01"
}

// BudgetSummary is a budget with its live spending figures. Spent is
// recomputed from transactions on every read, never cached.
type BudgetSummary struct {
	Budget
	Spent           decimal.Decimal `json:"spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	ConsumedPercent int             `json:"consumed_percent"`
}

// ─── Savings Goals ──────────────────────────────────────────────────────────

// Goal is a savings target the user contributes toward over time.
type Goal struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Saved    decimal.Decimal `json:"saved"`
	Deadline *time.Time      `json:"deadline,omitempty"`
}

// ProgressPercent returns saved/target as a whole percentage clamped to 100.
func (g Goal) ProgressPercent() int {
	if !g.Target.IsPositive() {
		return 100
	}
	pct := g.Saved.Div(g.Target).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// Reached reports whether the goal target has been met.
func (g Goal) Reached() bool {
	return g.Saved.GreaterThanOrEqual(g.Target)
}
