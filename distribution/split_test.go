package distribution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func levels(rates ...float64) []Level {
	out := make([]Level, len(rates))
	for i, r := range rates {
		out[i] = Level{AccountCode: string(rune('A' + i)), Rate: d(r)}
	}
	return out
}

func TestCommissionAmounts_IndependentPerLevel(t *testing.T) {
	amounts := CommissionAmounts(levels(2, 5, 1), d(-200))

	require.Len(t, amounts, 3)
	// every ancestor earns on the full |pl|, no pool is consumed
	assert.True(t, amounts[0].Equal(d(4)))
	assert.True(t, amounts[1].Equal(d(10)))
	assert.True(t, amounts[2].Equal(d(2)))
}

func TestCommissionAmounts_ZeroProfitLossPaysNothing(t *testing.T) {
	for _, a := range CommissionAmounts(levels(2, 5), decimal.Zero) {
		assert.True(t, a.IsZero())
	}
}

func TestCommissionAmounts_BoundedByFullProfitLoss(t *testing.T) {
	// rates each <= 100% never pay more than |pl| per level
	amounts := CommissionAmounts(levels(100, 50), d(80))
	assert.True(t, amounts[0].Equal(d(80)))
	assert.True(t, amounts[1].Equal(d(40)))
}

func TestPartnershipShares_CascadeConsumesPool(t *testing.T) {
	shares, remaining := PartnershipShares(levels(50, 50), d(1000))

	assert.True(t, shares[0].Equal(d(500)))
	assert.True(t, shares[1].Equal(d(250)), "second level takes 50%% of the remainder")
	assert.True(t, remaining.Equal(d(250)))
}

func TestPartnershipShares_NoLeakage(t *testing.T) {
	pl := d(777.77)
	shares, remaining := PartnershipShares(levels(30, 45, 10, 100), pl)

	total := remaining
	for _, s := range shares {
		total = total.Add(s)
	}
	assert.True(t, total.Equal(pl), "shares plus remainder must equal the pool, got %s", total)
}

func TestPartnershipShares_NegativePoolKeepsSign(t *testing.T) {
	// bettor won: the platform's loss flows up as debits
	shares, remaining := PartnershipShares(levels(50), d(-100))

	assert.True(t, shares[0].Equal(d(-50)))
	assert.True(t, remaining.Equal(d(-50)))
}

func TestPendingShares_SkipsLevelsAlreadyCredited(t *testing.T) {
	lv := levels(2, 5, 1)
	amounts := CommissionAmounts(lv, d(-200))

	// a prior attempt paid the first level before failing on the second
	pending := PendingShares(lv, amounts, map[string]bool{"A": true})

	assert.True(t, pending[0].IsZero(), "paid level must not be paid again")
	assert.True(t, pending[1].Equal(d(10)))
	assert.True(t, pending[2].Equal(d(2)))
}

func TestPendingShares_AllPaidIsFullyIdempotent(t *testing.T) {
	lv := levels(50, 50)
	shares, _ := PartnershipShares(lv, d(1000))

	pending := PendingShares(lv, shares, map[string]bool{"A": true, "B": true})
	for _, p := range pending {
		assert.True(t, p.IsZero())
	}
}

func TestPartnershipShares_StopsAtEpsilon(t *testing.T) {
	shares, remaining := PartnershipShares(levels(100, 50), d(0.005))

	assert.True(t, shares[0].IsZero(), "cascade must stop before paying dust")
	assert.True(t, shares[1].IsZero())
	assert.True(t, remaining.Equal(d(0.005)))
}
