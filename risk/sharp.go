package risk

import (
	"log"
	"time"

	"wagerx/models"
)

// Recommendation tiers, least to most severe.
const (
	TierMonitor      = "monitor"
	TierReduceLimits = "reduce_limits"
	TierAddDelay     = "add_delay"
	TierInvestigate  = "lock_and_investigate"
)

// SharpAccount is one statistically anomalous bettor flag. The table is
// populated by the periodic scan and is eventually consistent: a flag may
// lag real behavior by one scan interval.
type SharpAccount struct {
	AccountCode    string    `json:"account_code"`
	Settled        int       `json:"settled"`
	Wins           int       `json:"wins"`
	WinRate        float64   `json:"win_rate"`
	Recommendation string    `json:"recommendation"`
	FlaggedAt      time.Time `json:"flagged_at"`
}

type winRateRow struct {
	AccountCode string
	Settled     int
	Wins        int
}

// DetectSharpAccounts scans settled wagers, flags accounts whose win rate
// exceeds the threshold over at least MinSettled bets, and replaces the
// in-memory table consulted by BetDelay.
func (e *Engine) DetectSharpAccounts() ([]SharpAccount, error) {
	e.mu.RLock()
	cfg := e.sharpCfg
	e.mu.RUnlock()

	var rows []winRateRow
	if err := e.db.Model(&models.Wager{}).
		Select("account_code, COUNT(*) AS settled, COUNT(*) FILTER (WHERE profit_loss > 0) AS wins").
		Where("settled_at IS NOT NULL AND result <> ?", models.ResultVoid).
		Group("account_code").
		Having("COUNT(*) >= ?", cfg.MinSettled).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	flagged := make([]SharpAccount, 0)
	table := make(map[string]SharpAccount)

	for _, r := range rows {
		if r.Settled == 0 {
			continue
		}
		rate := float64(r.Wins) / float64(r.Settled)
		if rate <= cfg.WinRateThreshold {
			continue
		}
		sa := SharpAccount{
			AccountCode:    r.AccountCode,
			Settled:        r.Settled,
			Wins:           r.Wins,
			WinRate:        rate,
			Recommendation: recommendFor(rate, cfg.WinRateThreshold),
			FlaggedAt:      now,
		}
		flagged = append(flagged, sa)
		table[r.AccountCode] = sa
	}

	e.mu.Lock()
	e.sharpTable = table
	e.lastScanned = now
	e.mu.Unlock()

	if len(flagged) > 0 {
		log.Printf("risk: sharp scan flagged %d accounts", len(flagged))
	}
	return flagged, nil
}

// recommendFor escalates with the distance above the threshold.
func recommendFor(rate, threshold float64) string {
	excess := rate - threshold
	switch {
	case excess < 0.05:
		return TierMonitor
	case excess < 0.10:
		return TierReduceLimits
	case excess < 0.15:
		return TierAddDelay
	default:
		return TierInvestigate
	}
}

// IsSharp reports whether the account is currently flagged.
func (e *Engine) IsSharp(accountCode string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isSharpLocked(accountCode)
}

// SharpAccounts returns a copy of the current flag table.
func (e *Engine) SharpAccounts() []SharpAccount {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]SharpAccount, 0, len(e.sharpTable))
	for _, sa := range e.sharpTable {
		out = append(out, sa)
	}
	return out
}

// caller holds e.mu
func (e *Engine) isSharpLocked(accountCode string) bool {
	_, ok := e.sharpTable[accountCode]
	return ok
}
