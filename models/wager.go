package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bet families share one wager table and one state machine.
const (
	FamilyOutcome = "outcome"
	FamilyFancy   = "fancy"
	FamilyNumber  = "number"
)

const (
	SideFor     = "for"
	SideAgainst = "against"
)

// Matching status. Settlement is tracked separately via SettledAt/ProfitLoss
// so a void keeps its own status while settled wagers stay Matched.
const (
	StatusMatched   = "Matched"
	StatusUnmatched = "Unmatched"
	StatusVoid      = "Void"
)

// Result tags written at settlement.
const (
	ResultWon       = "won"
	ResultLost      = "lost"
	ResultTie       = "tie"
	ResultVoid      = "void"
	ResultCashedOut = "cashed_out"
)

// Wager is one placed bet. Open means SettledAt is nil; settlement is a
// one-way transition that fixes ProfitLoss forever (number-market rollback
// being the single documented exception).
type Wager struct {
	gorm.Model

	WagerCode   string `gorm:"uniqueIndex;size:64" json:"wager_code"`
	AccountCode string `gorm:"index;size:32" json:"account_code"`

	EventID   string `gorm:"index;size:64;index:idx_event_market" json:"event_id"`
	MarketID  string `gorm:"index;size:64;index:idx_event_market" json:"market_id"`
	BetFamily string `gorm:"index;size:16" json:"bet_family"`

	Selection string `gorm:"size:64" json:"selection"`
	Side      string `gorm:"size:8" json:"side"`

	Stake           decimal.Decimal `gorm:"type:numeric(18,2)" json:"stake"`
	Price           decimal.Decimal `gorm:"type:numeric(18,4)" json:"price"` // odds or line at placement
	PotentialProfit decimal.Decimal `gorm:"type:numeric(18,2)" json:"potential_profit"`
	PotentialLoss   decimal.Decimal `gorm:"type:numeric(18,2)" json:"potential_loss"`

	Status     string           `gorm:"size:16;index;default:Matched" json:"status"`
	SettledAt  *time.Time       `json:"settled_at"`
	ProfitLoss *decimal.Decimal `gorm:"type:numeric(18,2)" json:"profit_loss"`
	Result     string           `gorm:"size:16" json:"result"`

	PlacedIP  string         `gorm:"size:45" json:"placed_ip"`
	ExtraInfo datatypes.JSON `gorm:"type:jsonb" json:"extra_info"`

	Picks []NumberPick `gorm:"foreignKey:WagerID;constraint:OnDelete:CASCADE" json:"picks,omitempty"`
}

// Open reports whether the wager can still be settled or cashed out.
func (w *Wager) Open() bool {
	return w.SettledAt == nil && w.Status != StatusVoid
}

// RiskAmount is the worst-case outflow of the wager and therefore the
// amount held on exposure. Lay and fancy positions can lose more than the
// stake, so the stake alone does not cover the liability.
func (w *Wager) RiskAmount() decimal.Decimal {
	return decimal.Max(w.Stake, w.PotentialLoss)
}

// Pick types for number-family wagers.
const (
	PickFull  = "full"
	PickDigit = "digit"
)

// NumberPick is one chosen number with its own sub-stake under a
// number-family wager.
type NumberPick struct {
	gorm.Model

	WagerID  uint            `gorm:"index" json:"-"`
	PickType string          `gorm:"size:8" json:"pick_type"`
	Number   int             `json:"number"`
	SubStake decimal.Decimal `gorm:"type:numeric(18,2)" json:"sub_stake"`
	Won      bool            `gorm:"default:false" json:"won"`
}
