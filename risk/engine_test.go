package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestBetDelay_TakesTheMaximum(t *testing.T) {
	e := &Engine{
		sharpTable: map[string]SharpAccount{},
		delay: delayConfig{
			BaseDelayMs:   500,
			GlobalDelayMs: 800,
			Tiers: []delayTier{
				{MinStake: 1000, DelayMs: 3000},
				{MinStake: 5000, DelayMs: 6000},
			},
		},
	}

	assert.Equal(t, 800*time.Millisecond, e.BetDelay("acc1", d(100)))
	assert.Equal(t, 3*time.Second, e.BetDelay("acc1", d(1500)))
	assert.Equal(t, 6*time.Second, e.BetDelay("acc1", d(9000)),
		"highest matching tier wins, checked largest first")
}

func TestBetDelay_SharpSurcharge(t *testing.T) {
	e := &Engine{
		sharpTable: map[string]SharpAccount{
			"sharp1": {AccountCode: "sharp1", Recommendation: TierAddDelay},
		},
		delay: delayConfig{
			BaseDelayMs:  500,
			SharpExtraMs: 4000,
		},
	}

	assert.Equal(t, 500*time.Millisecond, e.BetDelay("normal", d(100)))
	assert.Equal(t, 4*time.Second, e.BetDelay("sharp1", d(100)))
}

func TestApplyMarginControl_WidensThinBook(t *testing.T) {
	e := &Engine{}

	// 2.10 / 2.10 implies ~95.2%: no overround at all
	pf, pa := e.ApplyMarginControl(d(2.10), d(2.10), d(5))

	imp := decimal.NewFromInt(1).Div(pf).Add(decimal.NewFromInt(1).Div(pa))
	assert.True(t, imp.GreaterThanOrEqual(d(1.049)),
		"implied sum should reach the 105%% target, got %s", imp)
	assert.True(t, pf.LessThan(d(2.10)), "both prices shorten")
	assert.True(t, pa.LessThan(d(2.10)))
}

func TestApplyMarginControl_LeavesFatBookAlone(t *testing.T) {
	e := &Engine{}

	pf, pa := e.ApplyMarginControl(d(1.80), d(1.80), d(5))

	// 1.80/1.80 already implies ~111%: nothing to do
	assert.True(t, pf.Equal(d(1.80)), "got %s", pf)
	assert.True(t, pa.Equal(d(1.80)), "got %s", pa)
}

func TestApplyMarginControl_RuleRaisesRequestedMargin(t *testing.T) {
	e := &Engine{margin: marginConfig{MinOverroundPct: 8}}

	pf, _ := e.ApplyMarginControl(d(2.10), d(2.10), d(2))

	imp := decimal.NewFromInt(1).Div(pf).Mul(decimal.NewFromInt(2))
	assert.True(t, imp.GreaterThanOrEqual(d(1.079)),
		"active rule overrides the weaker caller margin, got %s", imp)
}

func TestRecommendFor_Escalates(t *testing.T) {
	threshold := 0.55

	assert.Equal(t, TierMonitor, recommendFor(0.56, threshold))
	assert.Equal(t, TierReduceLimits, recommendFor(0.62, threshold))
	assert.Equal(t, TierAddDelay, recommendFor(0.67, threshold))
	assert.Equal(t, TierInvestigate, recommendFor(0.75, threshold))
}

func TestMinPositive(t *testing.T) {
	assert.Equal(t, 5.0, minPositive(0, 5))
	assert.Equal(t, 5.0, minPositive(5, 0))
	assert.Equal(t, 3.0, minPositive(5, 3))
	assert.Equal(t, 3.0, minPositive(3, 5))
	assert.Equal(t, 0.0, minPositive(0, 0))
}
