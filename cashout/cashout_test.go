package cashout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"wagerx/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestOutcomeFairValue_BackerGainsAsPriceShortens(t *testing.T) {
	w := &models.Wager{
		Side:  models.SideFor,
		Stake: d(100),
		Price: d(2.00),
	}

	raw := outcomeFairValue(w, d(1.50))
	amount := applyMargin(raw, d(5))

	// 100 * (2.00/1.50) = 133.33, minus 5% house margin
	assert.True(t, amount.Equal(d(126.67)), "got %s", amount)
	assert.True(t, amount.Sub(w.Stake).Equal(d(26.67)), "locked-in profit")
}

func TestOutcomeFairValue_BackerLosesAsPriceDrifts(t *testing.T) {
	w := &models.Wager{
		Side:  models.SideFor,
		Stake: d(100),
		Price: d(2.00),
	}

	raw := outcomeFairValue(w, d(4.00))
	assert.True(t, raw.Equal(d(50)), "drifting price halves the position, got %s", raw)
}

func TestOutcomeFairValue_LayerScalesInversely(t *testing.T) {
	w := &models.Wager{
		Side:  models.SideAgainst,
		Stake: d(100),
		Price: d(2.00),
	}

	shortened := outcomeFairValue(w, d(1.50))
	drifted := outcomeFairValue(w, d(3.00))

	assert.True(t, shortened.Equal(d(75)), "got %s", shortened)
	assert.True(t, drifted.Equal(d(150)), "got %s", drifted)
}

func TestCashable_NumberFamilyExcluded(t *testing.T) {
	assert.True(t, cashable(models.FamilyOutcome))
	assert.True(t, cashable(models.FamilyFancy))
	assert.False(t, cashable(models.FamilyNumber), "number wagers have no pre-draw value")
	assert.False(t, cashable(""))
}

func TestApplyMargin_FloorsAtZero(t *testing.T) {
	assert.True(t, applyMargin(d(-40), d(5)).IsZero())
	assert.True(t, applyMargin(decimal.Zero, d(5)).IsZero())
}

func TestFancyFairValue_ClampsProbability(t *testing.T) {
	w := &models.Wager{
		Side:            models.SideFor,
		Stake:           d(100),
		Price:           d(50), // line
		PotentialProfit: d(80),
		PotentialLoss:   d(100),
	}

	// running value far above the line: probability clamps at 0.95
	raw := fancyFairValue(w, d(500))
	// 100 + (0.95*80 - 0.05*100) = 171
	assert.True(t, raw.Equal(d(171)), "got %s", raw)

	// far below: clamps at 0.05
	raw = fancyFairValue(w, d(0))
	// 100 + (0.05*80 - 0.95*100) = 9
	assert.True(t, raw.Equal(d(9)), "got %s", raw)
}

func TestFancyFairValue_OnTheLine(t *testing.T) {
	w := &models.Wager{
		Side:            models.SideFor,
		Stake:           d(100),
		Price:           d(50),
		PotentialProfit: d(100),
		PotentialLoss:   d(100),
	}

	// sitting exactly on the line is a coin flip: EV zero, value = stake
	raw := fancyFairValue(w, d(50))
	assert.True(t, raw.Equal(d(100)), "got %s", raw)
}
