// Package simulate implements the forecasting math: closed-form
// compound-growth projections, trade-off deltas, and milestone timeline
// estimation. Pure arithmetic over caller-supplied scalars.
package simulate

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// maxHorizonMonths bounds timeline searches at 100 years.
const maxHorizonMonths = 1200

// Project returns the value of a principal after the given number of months,
// compounding annualRatePct monthly (rate/12) and adding the contribution at
// the end of each month. Result is rounded to cents.
func Project(principal, monthlyContribution, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	monthlyRate := annualRatePct.Div(hundred).Div(twelve)
	growth := one.Add(monthlyRate)

	value := principal
	for i := 0; i < months; i++ {
		value = value.Mul(growth).Add(monthlyContribution)
	}
	return value.Round(2)
}

// TradeOffResult compares investing a redirected recurring expense against
// simply stockpiling the cash.
type TradeOffResult struct {
	Invested   decimal.Decimal `json:"invested"`
	Stockpiled decimal.Decimal `json:"stockpiled"`
	Delta      decimal.Decimal `json:"delta"`
}

// TradeOff computes what redirecting a monthly expense into savings would be
// worth after the given horizon, versus keeping it as uninvested cash.
func TradeOff(monthlySaving, annualRatePct decimal.Decimal, months int) TradeOffResult {
	invested := Project(decimal.Zero, monthlySaving, annualRatePct, months)
	stockpiled := monthlySaving.Mul(decimal.NewFromInt(int64(months))).Round(2)
	return TradeOffResult{
		Invested:   invested,
		Stockpiled: stockpiled,
		Delta:      invested.Sub(stockpiled),
	}
}

// MonthsToTarget returns the smallest month count at which the projection
// reaches target, or -1 if the target is unreachable within 100 years.
// A target already met returns 0.
func MonthsToTarget(principal, monthlyContribution, annualRatePct, target decimal.Decimal) int {
	if principal.GreaterThanOrEqual(target) {
		return 0
	}

	monthlyRate := annualRatePct.Div(hundred).Div(twelve)
	growth := one.Add(monthlyRate)

	value := principal
	for month := 1; month <= maxHorizonMonths; month++ {
		value = value.Mul(growth).Add(monthlyContribution)
		if value.GreaterThanOrEqual(target) {
			return month
		}
	}
	return -1
}

// EstimateCompletion projects when a savings goal will be reached given a
// monthly contribution, assuming uninvested cash (zero rate). Returns nil if
// the contribution can never reach the target.
func EstimateCompletion(saved, target, monthlyContribution decimal.Decimal, now time.Time) *time.Time {
	months := MonthsToTarget(saved, monthlyContribution, decimal.Zero, target)
	if months < 0 {
		return nil
	}
	eta := now.AddDate(0, months, 0)
	return &eta
}
