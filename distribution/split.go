package distribution

import (
	"github.com/shopspring/decimal"

	"wagerx/helpers"
)

// Epsilon stops the partnership cascade once the remaining pool is dust.
var Epsilon = decimal.NewFromFloat(0.01)

// Level is one ancestor in the ownership chain, nearest first.
type Level struct {
	AccountCode string
	Rate        decimal.Decimal // percent
}

// CommissionAmounts returns each ancestor's commission on one settled
// wager. Every level independently earns rate% of the full absolute
// profit/loss; no pool is consumed. Zero profit/loss earns nothing.
func CommissionAmounts(levels []Level, profitLoss decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(levels))
	base := profitLoss.Abs()
	for i, lv := range levels {
		if base.IsZero() || lv.Rate.LessThanOrEqual(decimal.Zero) {
			out[i] = decimal.Zero
			continue
		}
		out[i] = helpers.Percent(base, lv.Rate)
	}
	return out
}

// PartnershipShares splits one finite pool up the chain: each level takes
// rate% of what is still unallocated, then passes the remainder upward.
// profitLoss is from the platform's perspective (positive when the bettor
// lost); shares keep that sign. The walk stops early once |remaining|
// drops under Epsilon; the final remainder stays with the platform.
func PartnershipShares(levels []Level, profitLoss decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	out := make([]decimal.Decimal, len(levels))
	remaining := profitLoss

	for i, lv := range levels {
		if remaining.Abs().LessThan(Epsilon) {
			break
		}
		if lv.Rate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		share := helpers.Percent(remaining, lv.Rate)
		out[i] = share
		remaining = remaining.Sub(share)
	}
	return out, remaining
}

// PendingShares zeroes the share of every level already credited for this
// wager. A retried cascade resumes where the last attempt failed instead
// of paying the earlier levels twice.
func PendingShares(levels []Level, amounts []decimal.Decimal, paid map[string]bool) []decimal.Decimal {
	out := make([]decimal.Decimal, len(amounts))
	for i, lv := range levels {
		if paid[lv.AccountCode] {
			out[i] = decimal.Zero
			continue
		}
		out[i] = amounts[i]
	}
	return out
}
