package risk

import (
	"github.com/shopspring/decimal"
)

// LockDecision explains why new placement is locked for a market.
type LockDecision struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason,omitempty"`
}

// ShouldAutoLock checks current liability against the configured ceilings:
// total open stake, platform worst case, and per-outcome exposure. Unset
// ceilings (zero) never lock.
func (e *Engine) ShouldAutoLock(eventID, marketID string) (LockDecision, error) {
	e.mu.RLock()
	cfg := e.lock
	e.mu.RUnlock()

	if cfg.MaxTotalStake <= 0 && cfg.MaxWorstCase <= 0 && cfg.MaxOutcomeExposure <= 0 {
		return LockDecision{}, nil
	}

	ev, err := e.liab.Compute(eventID)
	if err != nil {
		return LockDecision{}, err
	}

	if cfg.MaxTotalStake > 0 && ev.TotalStake.GreaterThan(decimal.NewFromFloat(cfg.MaxTotalStake)) {
		return LockDecision{Locked: true, Reason: "total stake ceiling exceeded"}, nil
	}
	if cfg.MaxWorstCase > 0 && ev.WorstCase.IsNegative() &&
		ev.WorstCase.Abs().GreaterThan(decimal.NewFromFloat(cfg.MaxWorstCase)) {
		return LockDecision{Locked: true, Reason: "worst-case loss ceiling exceeded"}, nil
	}
	if cfg.MaxOutcomeExposure > 0 {
		ceiling := decimal.NewFromFloat(cfg.MaxOutcomeExposure)
		for _, o := range ev.PerOutcome {
			if o.NetIfWins.IsNegative() && o.NetIfWins.Abs().GreaterThan(ceiling) {
				return LockDecision{Locked: true, Reason: "outcome exposure ceiling exceeded: " + o.Selection}, nil
			}
		}
	}

	return LockDecision{}, nil
}
