package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Distribution job states.
const (
	JobPending   = "pending"
	JobDone      = "done"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// DistributionJob is the outbox row for the commission/partnership cascade.
// It is written inside the same transaction that settles the wager so a
// crash between settlement and distribution cannot lose the cascade; the
// drain job retries pending rows at least once.
type DistributionJob struct {
	gorm.Model

	WagerID     uint            `gorm:"uniqueIndex" json:"wager_id"`
	AccountCode string          `gorm:"index;size:32" json:"account_code"`
	ProfitLoss  decimal.Decimal `gorm:"type:numeric(18,2)" json:"profit_loss"`
	BetFamily   string          `gorm:"size:16" json:"bet_family"`
	Status      string          `gorm:"size:16;index;default:pending" json:"status"`
	Attempts    int             `gorm:"default:0" json:"attempts"`
	LastError   string          `gorm:"size:255" json:"last_error"`
}
