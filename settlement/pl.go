package settlement

import (
	"github.com/shopspring/decimal"

	"wagerx/models"
)

// Number-family payout multiples: a full-number match and a single-digit
// match pay different fixed multiples of the sub-stake.
var (
	FullNumberMultiple  = decimal.NewFromInt(90)
	SingleDigitMultiple = decimal.NewFromInt(9)
)

// OutcomePL computes profit/loss and result tag for an outcome wager given
// the winning selection. A tie pays the backer half the potential profit
// and charges the layer half the potential loss, so matched books stay
// zero-sum. Void refunds the stake with zero profit/loss.
func OutcomePL(w *models.Wager, winningSelection string, tie bool) (decimal.Decimal, string) {
	if tie {
		half := decimal.NewFromInt(2)
		if w.Side == models.SideAgainst {
			return w.PotentialLoss.Div(half).Neg(), models.ResultTie
		}
		return w.PotentialProfit.Div(half), models.ResultTie
	}

	matched := w.Selection == winningSelection
	backing := w.Side != models.SideAgainst

	if matched == backing {
		return w.PotentialProfit, models.ResultWon
	}
	return w.PotentialLoss.Neg(), models.ResultLost
}

// FancyPL computes profit/loss for a threshold wager against the final
// value: backing the line wins when final >= line, laying it wins when
// final < line. The line is the wager's placement price.
func FancyPL(w *models.Wager, finalValue decimal.Decimal) (decimal.Decimal, string) {
	backing := w.Side != models.SideAgainst
	crossed := finalValue.GreaterThanOrEqual(w.Price)

	if crossed == backing {
		return w.PotentialProfit, models.ResultWon
	}
	return w.PotentialLoss.Neg(), models.ResultLost
}

// NumberPL computes profit/loss for a number wager: each pick is judged on
// its own sub-stake; full-number picks match the drawn result exactly,
// digit picks match its last digit. Winners collect the fixed multiple net
// of the sub-stake, losers forfeit it. The second return lists which picks
// won, index-aligned with w.Picks.
func NumberPL(w *models.Wager, result int) (decimal.Decimal, []bool, string) {
	pl := decimal.Zero
	won := make([]bool, len(w.Picks))
	anyWin := false

	for i := range w.Picks {
		p := &w.Picks[i]
		var hit bool
		var multiple decimal.Decimal
		if p.PickType == models.PickDigit {
			hit = p.Number == result%10
			multiple = SingleDigitMultiple
		} else {
			hit = p.Number == result
			multiple = FullNumberMultiple
		}
		if hit {
			pl = pl.Add(p.SubStake.Mul(multiple.Sub(decimal.NewFromInt(1))))
			won[i] = true
			anyWin = true
		} else {
			pl = pl.Sub(p.SubStake)
		}
	}

	tag := models.ResultLost
	if anyWin {
		tag = models.ResultWon
	}
	return pl, won, tag
}
