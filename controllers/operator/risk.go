package operator

import (
	"time"

	"wagerx/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func LiabilityHandler(c *fiber.Ctx) error {
	eventID := c.Params("eventId")
	if eventID == "" {
		return helpers.JSONError(c, "EVENT_ID_REQUIRED")
	}

	ev, err := liab.Compute(eventID)
	if err != nil {
		return helpers.JSONError(c, "LIABILITY_COMPUTE_FAILED")
	}
	return helpers.JSONSuccess(c, "Liability computed", ev)
}

func LiabilityOverviewHandler(c *fiber.Ctx) error {
	overview, err := liab.Overview()
	if err != nil {
		return helpers.JSONError(c, "LIABILITY_OVERVIEW_FAILED")
	}
	return helpers.JSONSuccess(c, "Liability overview", overview)
}

func AlertsHandler(c *fiber.Ctx) error {
	windowMin := c.QueryInt("window_minutes", 60)
	alerts, err := engine.RiskAlerts(time.Duration(windowMin) * time.Minute)
	if err != nil {
		return helpers.JSONError(c, "ALERT_SCAN_FAILED")
	}
	return helpers.JSONSuccess(c, "Risk alerts", alerts)
}

func SharpAccountsHandler(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "Flagged accounts", fiber.Map{
		"accounts":          engine.SharpAccounts(),
		"staleness_seconds": engine.SharpStaleness().Seconds(),
	})
}

func SharpScanHandler(c *fiber.Ctx) error {
	flagged, err := engine.DetectSharpAccounts()
	if err != nil {
		return helpers.JSONError(c, "SHARP_SCAN_FAILED")
	}
	return helpers.JSONSuccess(c, "Sharp scan completed", flagged)
}

func ReloadRulesHandler(c *fiber.Ctx) error {
	if err := engine.Reload(); err != nil {
		return helpers.JSONError(c, "RULE_RELOAD_FAILED")
	}
	return helpers.JSONSuccess(c, "Rules reloaded", nil)
}

type oddsSkewRequest struct {
	EventID string            `json:"event_id"`
	Prices  map[string]string `json:"prices"`
}

func OddsSkewHandler(c *fiber.Ctx) error {
	var req oddsSkewRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EventID == "" || len(req.Prices) == 0 {
		return helpers.JSONError(c, "EVENT_ID_AND_PRICES_REQUIRED")
	}

	prices := make(map[string]decimal.Decimal, len(req.Prices))
	for sel, raw := range req.Prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return helpers.JSONError(c, "INVALID_PRICE")
		}
		prices[sel] = p
	}

	skewed, err := engine.ApplyOddsSkew(prices, req.EventID)
	if err != nil {
		return helpers.JSONError(c, "SKEW_FAILED")
	}
	return helpers.JSONSuccess(c, "Odds skew applied", skewed)
}

type marginRequest struct {
	PriceFor     string `json:"price_for"`
	PriceAgainst string `json:"price_against"`
	MarginPct    string `json:"margin_pct"`
}

func MarginControlHandler(c *fiber.Ctx) error {
	var req marginRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	pf, err1 := decimal.NewFromString(req.PriceFor)
	pa, err2 := decimal.NewFromString(req.PriceAgainst)
	if err1 != nil || err2 != nil {
		return helpers.JSONError(c, "INVALID_PRICE")
	}
	margin := decimal.Zero
	if req.MarginPct != "" {
		m, err := decimal.NewFromString(req.MarginPct)
		if err != nil {
			return helpers.JSONError(c, "INVALID_MARGIN")
		}
		margin = m
	}

	newFor, newAgainst := engine.ApplyMarginControl(pf, pa, margin)
	return helpers.JSONSuccess(c, "Margin applied", fiber.Map{
		"price_for":     newFor,
		"price_against": newAgainst,
	})
}

func AutoLockHandler(c *fiber.Ctx) error {
	eventID := c.Query("event_id")
	marketID := c.Query("market_id")
	if eventID == "" {
		return helpers.JSONError(c, "EVENT_ID_REQUIRED")
	}

	decision, err := engine.ShouldAutoLock(eventID, marketID)
	if err != nil {
		return helpers.JSONError(c, "AUTO_LOCK_CHECK_FAILED")
	}
	return helpers.JSONSuccess(c, "Auto-lock decision", decision)
}
