package risk

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BetDelay returns the pause to impose before accepting a wager: the
// maximum of the configured base delay, global delay, the first matching
// stake tier (tiers checked largest-stake first) and the sharp surcharge
// when the account is currently flagged. The pause holds no locks.
func (e *Engine) BetDelay(accountCode string, stake decimal.Decimal) time.Duration {
	e.mu.RLock()
	cfg := e.delay
	flagged := e.isSharpLocked(accountCode)
	e.mu.RUnlock()

	ms := cfg.BaseDelayMs
	if cfg.GlobalDelayMs > ms {
		ms = cfg.GlobalDelayMs
	}

	if len(cfg.Tiers) > 0 {
		tiers := make([]delayTier, len(cfg.Tiers))
		copy(tiers, cfg.Tiers)
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinStake > tiers[j].MinStake })
		for _, t := range tiers {
			if stake.GreaterThanOrEqual(decimal.NewFromFloat(t.MinStake)) {
				if t.DelayMs > ms {
					ms = t.DelayMs
				}
				break
			}
		}
	}

	if flagged && cfg.SharpExtraMs > ms {
		ms = cfg.SharpExtraMs
	}

	return time.Duration(ms) * time.Millisecond
}
