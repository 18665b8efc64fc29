package routes

import (
	"wagerx/controllers/operator"
	"wagerx/middlewares"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

func Setup(app *fiber.App) {
	api := app.Group("/engine", middlewares.OperatorAuth())

	// risk
	api.Get("/risk/liability", operator.LiabilityOverviewHandler)
	api.Get("/risk/liability/:eventId", operator.LiabilityHandler)
	api.Get("/risk/alerts", operator.AlertsHandler)
	api.Get("/risk/sharp", operator.SharpAccountsHandler)
	api.Post("/risk/sharp/scan", operator.SharpScanHandler)
	api.Get("/risk/autolock", operator.AutoLockHandler)
	api.Post("/risk/rules/reload", operator.ReloadRulesHandler)
	api.Post("/risk/odds-skew", operator.OddsSkewHandler)
	api.Post("/risk/margin", operator.MarginControlHandler)
	api.Post("/risk/bet-delay", operator.BetDelayHandler)

	// settlement + distribution
	mutating := api.Group("", middlewares.RateLimit(rate.Limit(10), 20))
	mutating.Post("/settle/outcome", operator.SettleOutcomeHandler)
	mutating.Post("/settle/fancy", operator.SettleFancyHandler)
	mutating.Post("/settle/number", operator.SettleNumberHandler)
	mutating.Post("/wagers/place", operator.PlaceWagerHandler)
	mutating.Post("/wagers/void", operator.VoidWagerHandler)
	mutating.Post("/markets/void", operator.VoidMarketHandler)
	mutating.Post("/cashout/quote", operator.CashOutQuoteHandler)
	mutating.Post("/cashout/execute", operator.CashOutExecuteHandler)
	mutating.Post("/distribution/drain", operator.DrainDistributionHandler)
}
