package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// GateResult is the pre-placement decision for one wager.
type GateResult struct {
	Locked bool          `json:"locked"`
	Reason string        `json:"reason,omitempty"`
	Delay  time.Duration `json:"delay"`
}

// GateWager runs the placement gate: auto-lock first, then the bet delay.
// The caller sleeps for Delay before committing the reservation; nothing
// is held during the pause.
func (e *Engine) GateWager(accountCode, eventID, marketID string, stake decimal.Decimal) (GateResult, error) {
	lock, err := e.ShouldAutoLock(eventID, marketID)
	if err != nil {
		return GateResult{}, err
	}
	if lock.Locked {
		return GateResult{Locked: true, Reason: lock.Reason}, nil
	}
	return GateResult{Delay: e.BetDelay(accountCode, stake)}, nil
}
