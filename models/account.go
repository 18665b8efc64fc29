package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account is a node in the ownership tree. ParentCode forms the tree
// (child -> parent only, root has none). Balance and Exposure together
// define available funds: available = balance - exposure, never negative.
type Account struct {
	gorm.Model

	AccountCode string  `gorm:"uniqueIndex;size:32" json:"account_code"`
	ParentCode  *string `gorm:"index;size:32" json:"parent_code"`

	Balance       decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"balance"`
	Exposure      decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"exposure"`
	ExposureLimit decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"exposure_limit"` // 0 = unlimited

	// Per bet family percentage maps, e.g. {"outcome": "2.5", "number": "5"}.
	CommissionRates  datatypes.JSONMap `gorm:"type:jsonb" json:"commission_rates"`
	PartnershipRates datatypes.JSONMap `gorm:"type:jsonb" json:"partnership_rates"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// Available returns balance minus exposure.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Exposure)
}

// RateFor reads a per-family percentage out of a jsonb rate map.
// Missing or malformed entries count as zero.
func RateFor(rates datatypes.JSONMap, betFamily string) decimal.Decimal {
	raw, ok := rates[betFamily]
	if !ok {
		return decimal.Zero
	}
	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}
