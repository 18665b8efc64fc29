package liability

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagerx/models"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func outcomeWager(sel, side string, stake, profit, loss float64) models.Wager {
	return models.Wager{
		BetFamily:       models.FamilyOutcome,
		Selection:       sel,
		Side:            side,
		Stake:           d(stake),
		PotentialProfit: d(profit),
		PotentialLoss:   d(loss),
		Status:          models.StatusMatched,
	}
}

func TestComputeFromWagers_Empty(t *testing.T) {
	ev := ComputeFromWagers("ev1", nil)

	assert.True(t, ev.WorstCase.IsZero())
	assert.True(t, ev.BestCase.IsZero())
	assert.True(t, ev.TotalStake.IsZero())
	assert.Empty(t, ev.PerOutcome)
}

func TestComputeFromWagers_MatchedBookIsFlat(t *testing.T) {
	// A backs selection 1 (profit 90 / loss 100), B lays it (profit 100 /
	// loss 90): the operator is fully hedged whichever way it goes.
	wagers := []models.Wager{
		outcomeWager("1", models.SideFor, 100, 90, 100),
		outcomeWager("1", models.SideAgainst, 90, 100, 90),
	}

	ev := ComputeFromWagers("ev1", wagers)

	require.Len(t, ev.PerOutcome, 1)
	assert.True(t, ev.PerOutcome[0].NetIfWins.IsZero(),
		"matched book should be flat, got %s", ev.PerOutcome[0].NetIfWins)
	assert.True(t, ev.WorstCase.IsZero())
	assert.True(t, ev.BestCase.IsZero())
	assert.True(t, ev.TotalStake.Equal(d(190)))
}

func TestComputeFromWagers_OneSidedBook(t *testing.T) {
	// Only backers of selection 1, no hedge. If it wins the operator owes
	// their profit; if anything else wins the operator keeps their loss.
	wagers := []models.Wager{
		outcomeWager("1", models.SideFor, 100, 90, 100),
		outcomeWager("1", models.SideFor, 50, 45, 50),
		outcomeWager("2", models.SideFor, 10, 20, 10),
	}

	ev := ComputeFromWagers("ev1", wagers)

	require.Len(t, ev.PerOutcome, 2)
	bySel := map[string]OutcomeLiability{}
	for _, o := range ev.PerOutcome {
		bySel[o.Selection] = o
	}

	// selection 1 wins: owe 135, collect the 10 lost on selection 2
	assert.True(t, bySel["1"].NetIfWins.Equal(d(-125)), "got %s", bySel["1"].NetIfWins)
	// selection 2 wins: owe 20, collect 150
	assert.True(t, bySel["2"].NetIfWins.Equal(d(130)), "got %s", bySel["2"].NetIfWins)

	assert.True(t, ev.WorstCase.Equal(d(-125)))
	assert.True(t, ev.BestCase.Equal(d(130)))
}

func TestComputeFromWagers_IgnoresOtherFamiliesForOutcomes(t *testing.T) {
	wagers := []models.Wager{
		outcomeWager("1", models.SideFor, 100, 90, 100),
		{
			BetFamily: models.FamilyFancy,
			Stake:     d(40),
			Status:    models.StatusMatched,
		},
	}

	ev := ComputeFromWagers("ev1", wagers)

	require.Len(t, ev.PerOutcome, 1)
	assert.True(t, ev.TotalStake.Equal(d(140)), "fancy stake still counts toward the total")
	assert.Equal(t, 2, ev.OpenWagers)
}
