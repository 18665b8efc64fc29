package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"wagerx/models"
)

// Alert severities, ranked.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

var severityRank = map[string]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Alert is one operator-review item. Alert aggregation is read-only and
// mutates nothing.
type Alert struct {
	Severity    string    `json:"severity"`
	Kind        string    `json:"kind"`
	AccountCode string    `json:"account_code,omitempty"`
	EventID     string    `json:"event_id,omitempty"`
	Detail      string    `json:"detail"`
	RaisedAt    time.Time `json:"raised_at"`
}

// RiskAlerts scans recent activity for large single stakes, same-IP
// account concentration, activity by flagged sharp accounts, and events
// breaching the liability threshold, returning a severity-ranked list.
func (e *Engine) RiskAlerts(window time.Duration) ([]Alert, error) {
	e.mu.RLock()
	cfg := e.alerts
	sharp := make(map[string]SharpAccount, len(e.sharpTable))
	for k, v := range e.sharpTable {
		sharp[k] = v
	}
	e.mu.RUnlock()

	since := time.Now().Add(-window)
	now := time.Now()
	var alerts []Alert

	var recent []models.Wager
	if err := e.db.
		Where("created_at >= ?", since).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	// Large single stakes.
	if cfg.LargeStake > 0 {
		threshold := decimal.NewFromFloat(cfg.LargeStake)
		double := threshold.Mul(decimal.NewFromInt(2))
		for i := range recent {
			w := &recent[i]
			if w.Stake.LessThan(threshold) {
				continue
			}
			sev := SeverityMedium
			if w.Stake.GreaterThanOrEqual(double) {
				sev = SeverityHigh
			}
			alerts = append(alerts, Alert{
				Severity:    sev,
				Kind:        "large_stake",
				AccountCode: w.AccountCode,
				EventID:     w.EventID,
				Detail:      fmt.Sprintf("stake %s on %s/%s", w.Stake, w.EventID, w.MarketID),
				RaisedAt:    now,
			})
		}
	}

	// Many distinct accounts betting from one network origin.
	if cfg.MaxAccountsPerIP > 0 {
		byIP := make(map[string]map[string]struct{})
		for i := range recent {
			w := &recent[i]
			if w.PlacedIP == "" {
				continue
			}
			if byIP[w.PlacedIP] == nil {
				byIP[w.PlacedIP] = make(map[string]struct{})
			}
			byIP[w.PlacedIP][w.AccountCode] = struct{}{}
		}
		for ip, accounts := range byIP {
			if len(accounts) >= cfg.MaxAccountsPerIP {
				alerts = append(alerts, Alert{
					Severity: SeverityHigh,
					Kind:     "ip_concentration",
					Detail:   fmt.Sprintf("%d accounts placing from %s", len(accounts), ip),
					RaisedAt: now,
				})
			}
		}
	}

	// Recent activity by already-flagged accounts.
	seen := make(map[string]int)
	for i := range recent {
		seen[recent[i].AccountCode]++
	}
	for code, n := range seen {
		sa, ok := sharp[code]
		if !ok {
			continue
		}
		sev := SeverityMedium
		if sa.Recommendation == TierAddDelay || sa.Recommendation == TierInvestigate {
			sev = SeverityHigh
		}
		alerts = append(alerts, Alert{
			Severity:    sev,
			Kind:        "sharp_activity",
			AccountCode: code,
			Detail:      fmt.Sprintf("%d recent wagers, win rate %.1f%%, %s", n, sa.WinRate*100, sa.Recommendation),
			RaisedAt:    now,
		})
	}

	// Events whose worst case breaches the liability threshold.
	if cfg.EventWorstCase > 0 {
		overview, err := e.liab.Overview()
		if err != nil {
			return nil, err
		}
		ceiling := decimal.NewFromFloat(cfg.EventWorstCase)
		for _, ev := range overview {
			if ev.WorstCase.IsNegative() && ev.WorstCase.Abs().GreaterThan(ceiling) {
				alerts = append(alerts, Alert{
					Severity: SeverityCritical,
					Kind:     "liability_breach",
					EventID:  ev.EventID,
					Detail:   fmt.Sprintf("worst case %s exceeds ceiling %s", ev.WorstCase, ceiling.Neg()),
					RaisedAt: now,
				})
			}
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] > severityRank[alerts[j].Severity]
	})
	return alerts, nil
}
