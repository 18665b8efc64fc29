package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger entry types.
const (
	EntryReserve    = "reserve"
	EntryRelease    = "release"
	EntryVoid       = "void"
	EntryCashOut    = "cashout"
	EntryRollback   = "rollback"
	EntryCommission = "commission"
	EntryPartner    = "partnership"
)

// LedgerEntry is the append-only audit trail of every balance change.
// Entries are never updated or deleted; the Account row stays the source
// of truth for the current balance.
type LedgerEntry struct {
	gorm.Model

	AccountCode   string          `gorm:"index;size:32" json:"account_code"`
	WagerID       *uint           `gorm:"index" json:"wager_id"`
	EntryType     string          `gorm:"size:16;index" json:"entry_type"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(18,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(18,2)" json:"balance_after"`
	Remark        string          `gorm:"size:255" json:"remark"`
	RefID         string          `gorm:"size:64;index" json:"ref_id"`
}

// CommissionRecord is one immutable fact per ancestor per settled wager
// with non-zero commission.
type CommissionRecord struct {
	gorm.Model

	AccountCode string          `gorm:"index;size:32" json:"account_code"`
	WagerID     uint            `gorm:"index" json:"wager_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Rate        decimal.Decimal `gorm:"type:numeric(8,4)" json:"rate"`
	BetFamily   string          `gorm:"size:16" json:"bet_family"`
}
