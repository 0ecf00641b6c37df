// Package split implements bill-splitting arithmetic. Parts always sum
// exactly to the total: indivisible remainder cents are handed to the
// earliest participants, deterministically.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var cent = decimal.New(1, -2) // 0.01

// Even divides total across n participants into cent-exact parts.
func Even(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("participant count must be positive, got %d", n)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("cannot split a negative amount")
	}

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = 1
	}
	return apportion(total, shares)
}

// ByShares divides total proportionally to integer share weights.
// A participant with weight 2 owes twice one with weight 1.
func ByShares(total decimal.Decimal, weights []int64) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("no participants")
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("cannot split a negative amount")
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("share weight %d must be positive, got %d", i, w)
		}
	}
	return apportion(total, weights)
}

// apportion distributes total by weight, truncating each part to cents and
// then assigning leftover cents one at a time from the first participant on.
func apportion(total decimal.Decimal, weights []int64) ([]decimal.Decimal, error) {
	var sum int64
	for _, w := range weights {
		sum += w
	}
	weightSum := decimal.NewFromInt(sum)

	parts := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		part := total.Mul(decimal.NewFromInt(w)).Div(weightSum).RoundDown(2)
		parts[i] = part
		allocated = allocated.Add(part)
	}

	// Leftover is < one cent per participant by construction.
	leftover := total.Sub(allocated)
	for i := 0; leftover.GreaterThanOrEqual(cent); i = (i + 1) % len(parts) {
		parts[i] = parts[i].Add(cent)
		leftover = leftover.Sub(cent)
	}
	// Sub-cent residue (total given with >2dp) sticks to the first part.
	if !leftover.IsZero() {
		parts[0] = parts[0].Add(leftover)
	}

	return parts, nil
}
