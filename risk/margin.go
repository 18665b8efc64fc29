package risk

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ApplyMarginControl widens a two-sided price pair until the book carries
// at least the target overround, then enforces the minimum absolute spread.
// marginPct is the caller's requested overround in percent (e.g. 5 means a
// 105% implied book); an active margin rule can only raise it. Widening is
// proportional to each side's implied-probability share so the relative
// line does not move.
func (e *Engine) ApplyMarginControl(priceFor, priceAgainst decimal.Decimal, marginPct decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	e.mu.RLock()
	cfg := e.margin
	e.mu.RUnlock()

	ruleMargin := decimal.NewFromFloat(cfg.MinOverroundPct)
	if ruleMargin.GreaterThan(marginPct) {
		marginPct = ruleMargin
	}

	if priceFor.LessThanOrEqual(one) || priceAgainst.LessThanOrEqual(one) {
		return priceFor, priceAgainst
	}

	impFor := one.Div(priceFor)
	impAgainst := one.Div(priceAgainst)
	sum := impFor.Add(impAgainst)

	target := one.Add(marginPct.Div(decimal.NewFromInt(100)))
	if sum.LessThan(target) {
		// Scale both implied probabilities up by the same factor; prices
		// shrink toward evens, shares preserved.
		factor := target.Div(sum)
		impFor = impFor.Mul(factor)
		impAgainst = impAgainst.Mul(factor)
		priceFor = one.Div(impFor)
		priceAgainst = one.Div(impAgainst)
	}

	if cfg.MinSpread > 0 {
		minSpread := decimal.NewFromFloat(cfg.MinSpread)
		spread := priceAgainst.Sub(priceFor).Abs()
		if spread.LessThan(minSpread) {
			half := minSpread.Sub(spread).Div(decimal.NewFromInt(2))
			if priceFor.LessThanOrEqual(priceAgainst) {
				priceFor = priceFor.Sub(half)
				priceAgainst = priceAgainst.Add(half)
			} else {
				priceFor = priceFor.Add(half)
				priceAgainst = priceAgainst.Sub(half)
			}
			// A widened back price must stay above evens.
			floor := one.Add(decimal.NewFromFloat(0.01))
			if priceFor.LessThan(floor) {
				priceFor = floor
			}
			if priceAgainst.LessThan(floor) {
				priceAgainst = floor
			}
		}
	}

	return priceFor.Round(4), priceAgainst.Round(4)
}
