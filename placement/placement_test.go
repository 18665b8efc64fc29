package placement

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

func TestBuildWager_OutcomeBack(t *testing.T) {
	w, err := buildWager(Request{
		AccountCode: "acc1",
		EventID:     "ev1",
		MarketID:    "mk1",
		BetFamily:   models.FamilyOutcome,
		Selection:   "1",
		Side:        models.SideFor,
		Stake:       d(100),
		Price:       d(1.90),
	})
	require.NoError(t, err)

	assert.True(t, w.PotentialProfit.Equal(d(90)), "got %s", w.PotentialProfit)
	assert.True(t, w.PotentialLoss.Equal(d(100)))
	assert.Equal(t, models.StatusMatched, w.Status)
	assert.NotEmpty(t, w.WagerCode)
}

func TestBuildWager_OutcomeLayInvertsRisk(t *testing.T) {
	w, err := buildWager(Request{
		BetFamily: models.FamilyOutcome,
		Side:      models.SideAgainst,
		Stake:     d(90),
		Price:     d(2.00),
	})
	require.NoError(t, err)

	assert.True(t, w.PotentialProfit.Equal(d(90)))
	assert.True(t, w.PotentialLoss.Equal(d(90)))
}

func TestBuildWager_RiskAmountCoversWorstCaseLoss(t *testing.T) {
	// laying at long odds risks a multiple of the stake; the reserve must
	// hold the full liability or a losing settlement overdraws the balance
	w, err := buildWager(Request{
		BetFamily: models.FamilyOutcome,
		Side:      models.SideAgainst,
		Stake:     d(100),
		Price:     d(4.00),
	})
	require.NoError(t, err)

	assert.True(t, w.PotentialLoss.Equal(d(300)), "got %s", w.PotentialLoss)
	assert.True(t, w.RiskAmount().Equal(d(300)), "reserve must equal the worst case")

	// backing risks exactly the stake
	w, err = buildWager(Request{
		BetFamily: models.FamilyOutcome,
		Side:      models.SideFor,
		Stake:     d(100),
		Price:     d(4.00),
	})
	require.NoError(t, err)
	assert.True(t, w.RiskAmount().Equal(d(100)))

	// fancy terms are explicit and may exceed the stake either way
	w, err = buildWager(Request{
		BetFamily:       models.FamilyFancy,
		Stake:           d(100),
		Price:           d(50),
		PotentialProfit: d(80),
		PotentialLoss:   d(250),
	})
	require.NoError(t, err)
	assert.True(t, w.RiskAmount().Equal(d(250)))
}

func TestBuildWager_RejectsBadInput(t *testing.T) {
	_, err := buildWager(Request{BetFamily: models.FamilyOutcome, Stake: d(-5), Price: d(2)})
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = buildWager(Request{BetFamily: models.FamilyOutcome, Stake: d(10), Price: d(1.00)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = buildWager(Request{BetFamily: "parlay", Stake: d(10)})
	assert.ErrorIs(t, err, ErrInvalidFamily)

	_, err = buildWager(Request{BetFamily: models.FamilyNumber, Stake: d(10)})
	assert.ErrorIs(t, err, ErrNoPicks)
}

func TestBuildWager_NumberPicksMustSumToStake(t *testing.T) {
	req := Request{
		BetFamily: models.FamilyNumber,
		Stake:     d(30),
		Picks: []PickRequest{
			{PickType: models.PickFull, Number: 47, SubStake: d(10)},
			{PickType: models.PickDigit, Number: 7, SubStake: d(5)},
		},
	}
	_, err := buildWager(req)
	assert.ErrorIs(t, err, ErrInvalidStake)

	req.Stake = d(15)
	w, err := buildWager(req)
	require.NoError(t, err)

	// loss caps at the whole stake; profit is the best single pick payout
	assert.True(t, w.PotentialLoss.Equal(d(15)))
	assert.True(t, w.PotentialProfit.Equal(d(890)), "got %s", w.PotentialProfit)
	assert.Len(t, w.Picks, 2)
}
