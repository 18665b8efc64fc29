// Package risk implements the automation rule engine: odds skewing, margin
// enforcement, bet-delay scaling, auto-locking, sharp-bettor detection and
// operator alert aggregation. The engine is an explicit service object
// constructed once at process start; the admin layer calls Reload after
// mutating rules. Liability figures and sharp flags are advisory inputs,
// never authoritative state.
package risk

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"wagerx/liability"
	"wagerx/models"

	"gorm.io/gorm"
)

type skewConfig struct {
	ExposureThreshold float64 `json:"exposure_threshold"`
	MaxShiftPct       float64 `json:"max_shift_pct"`
}

type marginConfig struct {
	MinOverroundPct float64 `json:"min_overround_pct"`
	MinSpread       float64 `json:"min_spread"`
}

type delayTier struct {
	MinStake float64 `json:"min_stake"`
	DelayMs  int64   `json:"delay_ms"`
}

type delayConfig struct {
	BaseDelayMs   int64       `json:"base_delay_ms"`
	GlobalDelayMs int64       `json:"global_delay_ms"`
	SharpExtraMs  int64       `json:"sharp_extra_ms"`
	Tiers         []delayTier `json:"tiers"`
}

type lockConfig struct {
	MaxTotalStake      float64 `json:"max_total_stake"`
	MaxWorstCase       float64 `json:"max_worst_case"`
	MaxOutcomeExposure float64 `json:"max_outcome_exposure"`
}

type sharpConfig struct {
	MinSettled       int     `json:"min_settled"`
	WinRateThreshold float64 `json:"win_rate_threshold"`
}

type alertConfig struct {
	LargeStake       float64 `json:"large_stake"`
	MaxAccountsPerIP int     `json:"max_accounts_per_ip"`
	EventWorstCase   float64 `json:"event_worst_case"`
}

// Engine holds the reloadable rule snapshot and the in-memory sharp table.
type Engine struct {
	db           *gorm.DB
	liab         *liability.Calculator
	scanInterval time.Duration

	mu       sync.RWMutex
	skew     skewConfig
	margin   marginConfig
	delay    delayConfig
	lock     lockConfig
	sharpCfg sharpConfig
	alerts   alertConfig

	sharpTable  map[string]SharpAccount
	lastScanned time.Time
}

// NewEngine builds the engine and loads the initial rule snapshot.
// scanInterval is the sharp-scan period and therefore the explicit
// staleness window of the sharp table.
func NewEngine(db *gorm.DB, liab *liability.Calculator, scanInterval time.Duration) *Engine {
	e := &Engine{
		db:           db,
		liab:         liab,
		scanInterval: scanInterval,
		sharpTable:   make(map[string]SharpAccount),
	}
	if err := e.Reload(); err != nil {
		log.Printf("❌ risk: initial rule load failed: %v", err)
	}
	return e
}

// Reload re-reads active automation rules. Rules of the same type combine
// by taking the most conservative value, never by summing.
func (e *Engine) Reload() error {
	var rules []models.AutomationRule
	if err := e.db.Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return err
	}

	// Defaults when no rule of a type is active.
	skew := skewConfig{}
	margin := marginConfig{}
	delay := delayConfig{}
	lock := lockConfig{}
	sharp := sharpConfig{MinSettled: 50, WinRateThreshold: 0.55}
	alerts := alertConfig{}

	for _, r := range rules {
		switch r.RuleType {
		case models.RuleOddsSkew:
			var c skewConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			skew.ExposureThreshold = minPositive(skew.ExposureThreshold, c.ExposureThreshold)
			skew.MaxShiftPct = minPositive(skew.MaxShiftPct, c.MaxShiftPct)
		case models.RuleMarginControl:
			var c marginConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			if c.MinOverroundPct > margin.MinOverroundPct {
				margin.MinOverroundPct = c.MinOverroundPct
			}
			if c.MinSpread > margin.MinSpread {
				margin.MinSpread = c.MinSpread
			}
		case models.RuleBetDelay:
			var c delayConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			if c.BaseDelayMs > delay.BaseDelayMs {
				delay.BaseDelayMs = c.BaseDelayMs
			}
			if c.GlobalDelayMs > delay.GlobalDelayMs {
				delay.GlobalDelayMs = c.GlobalDelayMs
			}
			if c.SharpExtraMs > delay.SharpExtraMs {
				delay.SharpExtraMs = c.SharpExtraMs
			}
			delay.Tiers = append(delay.Tiers, c.Tiers...)
		case models.RuleAutoLock:
			var c lockConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			lock.MaxTotalStake = minPositive(lock.MaxTotalStake, c.MaxTotalStake)
			lock.MaxWorstCase = minPositive(lock.MaxWorstCase, c.MaxWorstCase)
			lock.MaxOutcomeExposure = minPositive(lock.MaxOutcomeExposure, c.MaxOutcomeExposure)
		case models.RuleSharpDetection:
			var c sharpConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			if c.MinSettled > 0 && c.MinSettled < sharp.MinSettled {
				sharp.MinSettled = c.MinSettled
			}
			if c.WinRateThreshold > 0 && c.WinRateThreshold < sharp.WinRateThreshold {
				sharp.WinRateThreshold = c.WinRateThreshold
			}
		case models.RuleLiabilityThreshold:
			var c alertConfig
			if json.Unmarshal(r.Config, &c) != nil {
				continue
			}
			alerts.LargeStake = minPositive(alerts.LargeStake, c.LargeStake)
			alerts.EventWorstCase = minPositive(alerts.EventWorstCase, c.EventWorstCase)
			if c.MaxAccountsPerIP > 0 &&
				(alerts.MaxAccountsPerIP == 0 || c.MaxAccountsPerIP < alerts.MaxAccountsPerIP) {
				alerts.MaxAccountsPerIP = c.MaxAccountsPerIP
			}
		}
	}

	e.mu.Lock()
	e.skew = skew
	e.margin = margin
	e.delay = delay
	e.lock = lock
	e.sharpCfg = sharp
	e.alerts = alerts
	e.mu.Unlock()

	log.Printf("risk: reloaded %d active rules", len(rules))
	return nil
}

// SharpStaleness is the interval between sharp scans: flags may lag real
// behavior by up to this long.
func (e *Engine) SharpStaleness() time.Duration {
	return e.scanInterval
}

// minPositive keeps the smaller of two configured ceilings, treating zero
// as "not configured".
func minPositive(cur, next float64) float64 {
	if next <= 0 {
		return cur
	}
	if cur <= 0 || next < cur {
		return next
	}
	return cur
}
