package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"wagerx/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestOutcomePL_ZeroSumPair(t *testing.T) {
	backer := &models.Wager{
		Selection: "1", Side: models.SideFor,
		PotentialProfit: d(90), PotentialLoss: d(100),
	}
	layer := &models.Wager{
		Selection: "1", Side: models.SideAgainst,
		PotentialProfit: d(100), PotentialLoss: d(90),
	}

	plA, resA := OutcomePL(backer, "1", false)
	plB, resB := OutcomePL(layer, "1", false)

	assert.True(t, plA.Equal(d(90)), "backer wins 90, got %s", plA)
	assert.Equal(t, models.ResultWon, resA)
	assert.True(t, plB.Equal(d(-90)), "layer loses 90, got %s", plB)
	assert.Equal(t, models.ResultLost, resB)
	assert.True(t, plA.Add(plB).IsZero(), "pair must be zero-sum")
}

func TestOutcomePL_OtherSelectionWins(t *testing.T) {
	backer := &models.Wager{
		Selection: "1", Side: models.SideFor,
		PotentialProfit: d(90), PotentialLoss: d(100),
	}
	layer := &models.Wager{
		Selection: "1", Side: models.SideAgainst,
		PotentialProfit: d(100), PotentialLoss: d(90),
	}

	plA, _ := OutcomePL(backer, "2", false)
	plB, _ := OutcomePL(layer, "2", false)

	assert.True(t, plA.Equal(d(-100)), "backer loses the liability, got %s", plA)
	assert.True(t, plB.Equal(d(100)), "layer collects, got %s", plB)
}

func TestOutcomePL_Tie(t *testing.T) {
	backer := &models.Wager{
		Selection: "1", Side: models.SideFor,
		PotentialProfit: d(90), PotentialLoss: d(100),
	}
	layer := &models.Wager{
		Selection: "1", Side: models.SideAgainst,
		PotentialProfit: d(100), PotentialLoss: d(90),
	}

	plA, resA := OutcomePL(backer, "", true)
	plB, _ := OutcomePL(layer, "", true)

	assert.Equal(t, models.ResultTie, resA)
	assert.True(t, plA.Equal(d(45)), "tie pays half the backer profit, got %s", plA)
	assert.True(t, plB.Equal(d(-45)), "tie charges half the layer loss, got %s", plB)
	assert.True(t, plA.Add(plB).IsZero())
}

func TestFancyPL(t *testing.T) {
	tests := []struct {
		name  string
		side  string
		line  float64
		final float64
		want  float64
	}{
		{"back crosses line", models.SideFor, 45.5, 50, 80},
		{"back exactly on line", models.SideFor, 45.5, 45.5, 80},
		{"back misses line", models.SideFor, 45.5, 40, -100},
		{"lay stays under line", models.SideAgainst, 45.5, 40, 80},
		{"lay overrun", models.SideAgainst, 45.5, 50, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &models.Wager{
				BetFamily:       models.FamilyFancy,
				Side:            tt.side,
				Price:           d(tt.line),
				PotentialProfit: d(80),
				PotentialLoss:   d(100),
			}
			pl, _ := FancyPL(w, d(tt.final))
			assert.True(t, pl.Equal(d(tt.want)), "%s: want %v got %s", tt.name, tt.want, pl)
		})
	}
}

func TestNumberPL_FullAndDigit(t *testing.T) {
	w := &models.Wager{
		BetFamily: models.FamilyNumber,
		Picks: []models.NumberPick{
			{PickType: models.PickFull, Number: 47, SubStake: d(10)},
			{PickType: models.PickDigit, Number: 7, SubStake: d(5)},
			{PickType: models.PickFull, Number: 12, SubStake: d(20)},
		},
	}

	pl, won, tag := NumberPL(w, 47)

	// full 47 pays 10*(90-1)=890, digit 7 pays 5*(9-1)=40, 12 forfeits 20
	assert.True(t, pl.Equal(d(910)), "got %s", pl)
	assert.Equal(t, []bool{true, true, false}, won)
	assert.Equal(t, models.ResultWon, tag)
}

func TestNumberPL_ResettleWithCorrectedResult(t *testing.T) {
	// a rollback wipes settled_at/profit_loss and the won flags; the
	// re-settle recomputes cleanly from the picks with the corrected result
	w := &models.Wager{
		BetFamily: models.FamilyNumber,
		Stake:     d(30),
		Picks: []models.NumberPick{
			{PickType: models.PickFull, Number: 47, SubStake: d(10)},
			{PickType: models.PickFull, Number: 12, SubStake: d(20)},
		},
	}

	first, _, _ := NumberPL(w, 47)
	assert.True(t, first.Equal(d(870)), "got %s", first)

	// same wager state, corrected draw: prior flags must not leak through
	w.Picks[0].Won = true
	second, won, tag := NumberPL(w, 12)

	assert.True(t, second.Equal(d(1770)), "20*(90-1) - 10, got %s", second)
	assert.Equal(t, []bool{false, true}, won)
	assert.Equal(t, models.ResultWon, tag)

	// the ledger moves the same reserved amount out and back in either pass
	assert.True(t, w.RiskAmount().Equal(d(30)))
}

func TestNumberPL_AllMiss(t *testing.T) {
	w := &models.Wager{
		BetFamily: models.FamilyNumber,
		Picks: []models.NumberPick{
			{PickType: models.PickFull, Number: 3, SubStake: d(10)},
			{PickType: models.PickDigit, Number: 9, SubStake: d(15)},
		},
	}

	pl, won, tag := NumberPL(w, 41)

	assert.True(t, pl.Equal(d(-25)), "all sub-stakes forfeited, got %s", pl)
	assert.Equal(t, []bool{false, false}, won)
	assert.Equal(t, models.ResultLost, tag)
}
