package helpers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "126.67", RoundMoney(decimal.NewFromFloat(126.6666)).StringFixed(2))
	assert.Equal(t, "-126.67", RoundMoney(decimal.NewFromFloat(-126.665)).StringFixed(2))
	assert.Equal(t, "10.00", RoundMoney(decimal.NewFromInt(10)).StringFixed(2))
}

func TestPercent(t *testing.T) {
	base := decimal.NewFromInt(200)
	assert.Equal(t, "5.00", Percent(base, decimal.NewFromFloat(2.5)).StringFixed(2))
	assert.Equal(t, "0.00", Percent(base, decimal.Zero).StringFixed(2))
}
