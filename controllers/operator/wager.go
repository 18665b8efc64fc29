package operator

import (
	"errors"

	"wagerx/cashout"
	"wagerx/helpers"
	"wagerx/ledger"
	"wagerx/placement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func PlaceWagerHandler(c *fiber.Ctx) error {
	var req placement.Request
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.PlacedIP == "" {
		req.PlacedIP = c.IP()
	}

	w, err := placer.Place(req)
	switch {
	case errors.Is(err, placement.ErrMarketLocked):
		return helpers.JSONError(c, "MARKET_LOCKED")
	case errors.Is(err, placement.ErrInvalidStake),
		errors.Is(err, placement.ErrInvalidPrice),
		errors.Is(err, placement.ErrInvalidFamily),
		errors.Is(err, placement.ErrNoPicks):
		return helpers.JSONError(c, "INVALID_WAGER")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return helpers.JSONError(c, "INSUFFICIENT_FUNDS")
	case errors.Is(err, ledger.ErrLimitExceeded):
		return helpers.JSONError(c, "EXPOSURE_LIMIT_EXCEEDED")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return helpers.JSONError(c, "ACCOUNT_NOT_FOUND")
	case err != nil:
		return helpers.JSONError(c, "PLACEMENT_FAILED")
	}

	return helpers.JSONSuccess(c, "Wager placed", fiber.Map{
		"wager_code": w.WagerCode,
		"stake":      w.Stake,
		"status":     w.Status,
	})
}

type cashOutQuoteRequest struct {
	WagerCode    string `json:"wager_code"`
	AccountCode  string `json:"account_code"`
	CurrentPrice string `json:"current_price"`
	MarginPct    string `json:"margin_pct"`
}

func CashOutQuoteHandler(c *fiber.Ctx) error {
	var req cashOutQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	price, err := decimal.NewFromString(req.CurrentPrice)
	if err != nil {
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

	quote, err := cashier.Calculate(req.WagerCode, req.AccountCode, price, margin)
	if err != nil {
		return helpers.JSONError(c, "QUOTE_FAILED")
	}
	return helpers.JSONSuccess(c, "Cash-out quote", quote)
}

type cashOutExecuteRequest struct {
	WagerCode   string `json:"wager_code"`
	AccountCode string `json:"account_code"`
	Amount      string `json:"amount"`
}

func CashOutExecuteHandler(c *fiber.Ctx) error {
	var req cashOutExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return helpers.JSONError(c, "INVALID_AMOUNT")
	}

	newBalance, err := cashier.Execute(req.WagerCode, req.AccountCode, amount)
	switch {
	case errors.Is(err, cashout.ErrWagerNotFound):
		return helpers.JSONError(c, "WAGER_NOT_FOUND")
	case errors.Is(err, cashout.ErrNotOwner):
		return helpers.JSONError(c, "NOT_WAGER_OWNER")
	case errors.Is(err, cashout.ErrNotCashable):
		return helpers.JSONError(c, "BET_FAMILY_NOT_CASHABLE")
	case errors.Is(err, cashout.ErrAlreadySettled):
		return helpers.JSONError(c, "WAGER_NOT_OPEN")
	case errors.Is(err, cashout.ErrInvalidAmount):
		return helpers.JSONError(c, "INVALID_AMOUNT")
	case err != nil:
		return helpers.JSONError(c, "CASHOUT_FAILED")
	}

	return helpers.JSONSuccess(c, "Cash-out executed", fiber.Map{
		"new_balance": newBalance,
	})
}

type betDelayRequest struct {
	AccountCode string `json:"account_code"`
	Stake       string `json:"stake"`
}

func BetDelayHandler(c *fiber.Ctx) error {
	var req betDelayRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	stake, err := decimal.NewFromString(req.Stake)
	if err != nil {
		return helpers.JSONError(c, "INVALID_STAKE")
	}

	delay := engine.BetDelay(req.AccountCode, stake)
	return helpers.JSONSuccess(c, "Bet delay", fiber.Map{
		"delay_ms": delay.Milliseconds(),
	})
}
