// Package spending aggregates expense transactions into live totals.
// Totals are never cached: every call re-reduces from source rows so the
// figure is always current, at the cost of one query per call.
package spending

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// Aggregator computes spending totals from the transaction store.
type Aggregator struct {
	db *sqlite.DB
}

// NewAggregator creates a spending aggregator.
func NewAggregator(db *sqlite.DB) *Aggregator {
	return &Aggregator{db: db}
}

// ComputeSpent sums the user's expense transactions in the category within
// [from, to] inclusive. Returns zero when no rows match. Deterministic and
// side-effect free; only a storage error propagates.
func (a *Aggregator) ComputeSpent(userID, category string, from, to time.Time) (decimal.Decimal, error) {
	txs, err := a.db.ListTransactions(userID, sqlite.TxFilter{
		Type:     domain.TransactionExpense,
		Category: category,
		From:     from,
		To:       to,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("aggregate %s spending: %w", category, err)
	}

	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// CategoryTotals returns per-category expense totals for the range, sorted by
// descending total.
func (a *Aggregator) CategoryTotals(userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	txs, err := a.db.ListTransactions(userID, sqlite.TxFilter{
		Type: domain.TransactionExpense,
		From: from,
		To:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate category totals: %w", err)
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, t := range txs {
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
	}

	totals := make([]domain.CategoryTotal, 0, len(byCategory))
	for cat, total := range byCategory {
		totals = append(totals, domain.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Category < totals[j].Category
		}
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals, nil
}

// BudgetSummaries returns the user's budgets for a month with live spending
// figures, recomputed from transactions on every call.
func (a *Aggregator) BudgetSummaries(userID, month string) ([]domain.BudgetSummary, error) {
	budgets, err := a.db.ListBudgets(userID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.BudgetSummary, 0, len(budgets))
	for _, b := range budgets {
		spent, err := a.ComputeSpent(userID, b.Category, from, to)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.BudgetSummary{
			Budget:          b,
			Spent:           spent,
			Remaining:       domain.RemainingBudget(spent, b.Limit),
			ConsumedPercent: domain.ConsumedPercent(spent, b.Limit),
		})
	}
	return summaries, nil
}

// MonthRange returns the inclusive [first instant, last instant] of a
// "2006-01" month in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}
