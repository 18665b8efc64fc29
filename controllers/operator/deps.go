package operator

import (
	"wagerx/cashout"
	"wagerx/distribution"
	"wagerx/liability"
	"wagerx/placement"
	"wagerx/risk"
	"wagerx/settlement"
)

var (
	engine  *risk.Engine
	liab    *liability.Calculator
	settler *settlement.Settler
	cashier *cashout.Service
	placer  *placement.Service
	dist    *distribution.Distributor
)

// Init wires the handlers to the engine services built in main.
func Init(e *risk.Engine, l *liability.Calculator, s *settlement.Settler, c *cashout.Service, p *placement.Service, d *distribution.Distributor) {
	engine = e
	liab = l
	settler = s
	cashier = c
	placer = p
	dist = d
}
