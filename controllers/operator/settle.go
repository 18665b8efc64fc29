package operator

import (
	"errors"

	"wagerx/helpers"
	"wagerx/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type settleOutcomeRequest struct {
	EventID          string `json:"event_id"`
	MarketID         string `json:"market_id"`
	WinningSelection string `json:"winning_selection"`
	Void             bool   `json:"void"`
	Tie              bool   `json:"tie"`
}

func SettleOutcomeHandler(c *fiber.Ctx) error {
	var req settleOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EventID == "" || req.MarketID == "" {
		return helpers.JSONError(c, "EVENT_AND_MARKET_REQUIRED")
	}
	if !req.Void && !req.Tie && req.WinningSelection == "" {
		return helpers.JSONError(c, "WINNING_SELECTION_REQUIRED")
	}

	sum, err := settler.SettleOutcomeMarket(req.EventID, req.MarketID, req.WinningSelection, req.Void, req.Tie)
	if err != nil {
		return helpers.JSONError(c, "SETTLEMENT_FAILED")
	}
	return helpers.JSONSuccess(c, "Outcome market settled", sum)
}

type settleFancyRequest struct {
	EventID    string `json:"event_id"`
	MarketID   string `json:"market_id"`
	FinalValue string `json:"final_value"`
	Void       bool   `json:"void"`
}

func SettleFancyHandler(c *fiber.Ctx) error {
	var req settleFancyRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EventID == "" || req.MarketID == "" {
		return helpers.JSONError(c, "EVENT_AND_MARKET_REQUIRED")
	}

	final := decimal.Zero
	if !req.Void {
		f, err := decimal.NewFromString(req.FinalValue)
		if err != nil {
			return helpers.JSONError(c, "INVALID_FINAL_VALUE")
		}
		final = f
	}

	sum, err := settler.SettleFancyMarket(req.EventID, req.MarketID, final, req.Void)
	if err != nil {
		return helpers.JSONError(c, "SETTLEMENT_FAILED")
	}
	return helpers.JSONSuccess(c, "Fancy market settled", sum)
}

type settleNumberRequest struct {
	MarketID string `json:"market_id"`
	Result   int    `json:"result"`
	Rollback bool   `json:"rollback"`
}

func SettleNumberHandler(c *fiber.Ctx) error {
	var req settleNumberRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.MarketID == "" {
		return helpers.JSONError(c, "MARKET_ID_REQUIRED")
	}

	sum, err := settler.SettleNumberMarket(req.MarketID, req.Result, req.Rollback)
	if err != nil {
		return helpers.JSONError(c, "SETTLEMENT_FAILED")
	}
	msg := "Number market settled"
	if req.Rollback {
		msg = "Number market rolled back"
	}
	return helpers.JSONSuccess(c, msg, sum)
}

type voidWagerRequest struct {
	WagerCode string `json:"wager_code"`
}

func VoidWagerHandler(c *fiber.Ctx) error {
	var req voidWagerRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.WagerCode == "" {
		return helpers.JSONError(c, "WAGER_CODE_REQUIRED")
	}

	err := settler.VoidWager(req.WagerCode)
	switch {
	case errors.Is(err, settlement.ErrWagerNotFound):
		return helpers.JSONError(c, "WAGER_NOT_FOUND")
	case errors.Is(err, settlement.ErrNotOpen), errors.Is(err, settlement.ErrAlreadySettled):
		return helpers.JSONError(c, "WAGER_NOT_OPEN")
	case err != nil:
		return helpers.JSONError(c, "VOID_FAILED")
	}
	return helpers.JSONSuccess(c, "Wager voided", nil)
}

type voidMarketRequest struct {
	EventID  string `json:"event_id"`
	MarketID string `json:"market_id"`
}

func VoidMarketHandler(c *fiber.Ctx) error {
	var req voidMarketRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.EventID == "" || req.MarketID == "" {
		return helpers.JSONError(c, "EVENT_AND_MARKET_REQUIRED")
	}

	sum, err := settler.VoidMarket(req.EventID, req.MarketID)
	if err != nil {
		return helpers.JSONError(c, "VOID_FAILED")
	}
	return helpers.JSONSuccess(c, "Market voided", sum)
}

func DrainDistributionHandler(c *fiber.Ctx) error {
	if err := dist.Drain(100); err != nil {
		return helpers.JSONError(c, "DRAIN_FAILED")
	}
	return helpers.JSONSuccess(c, "Distribution outbox drained", nil)
}
