package risk

import (
	"github.com/shopspring/decimal"

	"wagerx/helpers"
)

// ApplyOddsSkew reprices an event's published odds when liability on one
// selection runs past the configured threshold. The price on the heavy
// selection is reduced and every other price raised by the same bounded
// percentage, so new stake is steered toward the hedge. The shift scales
// with how far past the threshold the exposure is, capped at the rule cap.
// With no skew rule active, or exposure inside the threshold, prices come
// back unchanged.
func (e *Engine) ApplyOddsSkew(prices map[string]decimal.Decimal, eventID string) (map[string]decimal.Decimal, error) {
	e.mu.RLock()
	cfg := e.skew
	e.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(prices))
	for sel, p := range prices {
		out[sel] = p
	}

	if cfg.ExposureThreshold <= 0 || cfg.MaxShiftPct <= 0 {
		return out, nil
	}

	ev, err := e.liab.Compute(eventID)
	if err != nil {
		return nil, err
	}
	if len(ev.PerOutcome) == 0 {
		return out, nil
	}

	// Heavy selection = worst operator loss if it wins.
	heavy := ""
	heavyLoss := decimal.Zero
	for _, o := range ev.PerOutcome {
		if o.NetIfWins.IsNegative() && o.NetIfWins.LessThan(heavyLoss) {
			heavyLoss = o.NetIfWins
			heavy = o.Selection
		}
	}
	if heavy == "" {
		return out, nil
	}

	threshold := decimal.NewFromFloat(cfg.ExposureThreshold)
	exposure := heavyLoss.Abs()
	if exposure.LessThanOrEqual(threshold) {
		return out, nil
	}

	maxShift := decimal.NewFromFloat(cfg.MaxShiftPct)
	excess := exposure.Sub(threshold).Div(threshold)
	shift := maxShift.Mul(excess)
	if shift.GreaterThan(maxShift) {
		shift = maxShift
	}

	factorDown := decimal.NewFromInt(1).Sub(shift.Div(helpers.Hundred))
	factorUp := decimal.NewFromInt(1).Add(shift.Div(helpers.Hundred))

	for sel, p := range out {
		if sel == heavy {
			out[sel] = p.Mul(factorDown).Round(4)
		} else {
			out[sel] = p.Mul(factorUp).Round(4)
		}
	}
	return out, nil
}
