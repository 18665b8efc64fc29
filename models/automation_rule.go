package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Automation rule types. Rules of one type combine cumulatively: the most
// conservative numeric effect wins, values are never summed.
const (
	RuleOddsSkew           = "ODDS_SKEW"
	RuleLiabilityThreshold = "LIABILITY_THRESHOLD"
	RuleBetDelay           = "BET_DELAY"
	RuleSharpDetection     = "SHARP_DETECTION"
	RuleAutoLock           = "AUTO_LOCK"
	RuleMarginControl      = "MARGIN_CONTROL"
)

// AutomationRule is operator-configured and reloaded into the risk engine
// on change via its Reload entry point.
type AutomationRule struct {
	gorm.Model

	Name     string         `gorm:"size:64" json:"name"`
	RuleType string         `gorm:"size:32;index" json:"rule_type"`
	Config   datatypes.JSON `gorm:"type:jsonb" json:"config"`
	IsActive bool           `gorm:"default:true;index" json:"is_active"`
}
