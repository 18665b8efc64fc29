// Package liability computes the operator's real-time financial exposure
// across the open wagers of an event. Figures are recomputed from current
// open wagers on every call; the short-lived memo only avoids duplicate
// work inside one request burst and carries no durability guarantee.
package liability

import (
	"sync"
	"time"

	"wagerx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OutcomeLiability is the operator's position on one selection.
type OutcomeLiability struct {
	Selection    string          `json:"selection"`
	ForStake     decimal.Decimal `json:"for_stake"`
	AgainstStake decimal.Decimal `json:"against_stake"`
	// NetIfWins is the operator's profit/loss if this selection wins.
	// Negative means the operator pays out.
	NetIfWins decimal.Decimal `json:"net_if_wins"`
}

// EventLiability is the full liability picture for one event.
type EventLiability struct {
	EventID    string             `json:"event_id"`
	PerOutcome []OutcomeLiability `json:"per_outcome"`
	WorstCase  decimal.Decimal    `json:"worst_case"`
	BestCase   decimal.Decimal    `json:"best_case"`
	TotalStake decimal.Decimal    `json:"total_stake"`
	OpenWagers int                `json:"open_wagers"`
	ComputedAt time.Time          `json:"computed_at"`
}

// Calculator loads open wagers and memoizes results for MaxAge.
type Calculator struct {
	db     *gorm.DB
	maxAge time.Duration

	mu   sync.Mutex
	memo map[string]*EventLiability
}

func NewCalculator(db *gorm.DB, maxAge time.Duration) *Calculator {
	return &Calculator{
		db:     db,
		maxAge: maxAge,
		memo:   make(map[string]*EventLiability),
	}
}

// Compute returns the event's liability, reusing a memoized value only
// while it is younger than MaxAge.
func (c *Calculator) Compute(eventID string) (*EventLiability, error) {
	c.mu.Lock()
	if cached, ok := c.memo[eventID]; ok && time.Since(cached.ComputedAt) < c.maxAge {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var wagers []models.Wager
	if err := c.db.
		Where("event_id = ? AND status = ? AND settled_at IS NULL", eventID, models.StatusMatched).
		Find(&wagers).Error; err != nil {
		return nil, err
	}

	result := ComputeFromWagers(eventID, wagers)

	c.mu.Lock()
	c.memo[eventID] = result
	c.mu.Unlock()

	return result, nil
}

// Invalidate drops the memo for an event after its wagers changed.
func (c *Calculator) Invalidate(eventID string) {
	c.mu.Lock()
	delete(c.memo, eventID)
	c.mu.Unlock()
}

// Overview computes liability for every event with open matched wagers.
func (c *Calculator) Overview() ([]*EventLiability, error) {
	var eventIDs []string
	if err := c.db.Model(&models.Wager{}).
		Where("status = ? AND settled_at IS NULL", models.StatusMatched).
		Distinct("event_id").
		Pluck("event_id", &eventIDs).Error; err != nil {
		return nil, err
	}

	out := make([]*EventLiability, 0, len(eventIDs))
	for _, id := range eventIDs {
		ev, err := c.Compute(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// ComputeFromWagers is the pure calculation: bucket stakes by selection
// and side, then for each candidate winning selection sum the operator's
// position. If the candidate wins, the operator owes that selection's
// "for" profit and collects its "against" losses; on every other selection
// the "for" side forfeits its loss and the "against" side is owed its
// profit. One-sided books are valid and simply carry no hedge.
func ComputeFromWagers(eventID string, wagers []models.Wager) *EventLiability {
	type bucket struct {
		forStake, againstStake     decimal.Decimal
		forProfit, forLoss         decimal.Decimal
		againstProfit, againstLoss decimal.Decimal
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)
	totalStake := decimal.Zero
	open := 0

	for i := range wagers {
		w := &wagers[i]
		if w.BetFamily != models.FamilyOutcome {
			totalStake = totalStake.Add(w.Stake)
			open++
			continue
		}
		b, ok := buckets[w.Selection]
		if !ok {
			b = &bucket{}
			buckets[w.Selection] = b
			order = append(order, w.Selection)
		}
		if w.Side == models.SideAgainst {
			b.againstStake = b.againstStake.Add(w.Stake)
			b.againstProfit = b.againstProfit.Add(w.PotentialProfit)
			b.againstLoss = b.againstLoss.Add(w.PotentialLoss)
		} else {
			b.forStake = b.forStake.Add(w.Stake)
			b.forProfit = b.forProfit.Add(w.PotentialProfit)
			b.forLoss = b.forLoss.Add(w.PotentialLoss)
		}
		totalStake = totalStake.Add(w.Stake)
		open++
	}

	result := &EventLiability{
		EventID:    eventID,
		PerOutcome: make([]OutcomeLiability, 0, len(order)),
		TotalStake: totalStake,
		OpenWagers: open,
		ComputedAt: time.Now(),
	}

	if len(order) == 0 {
		result.WorstCase = decimal.Zero
		result.BestCase = decimal.Zero
		return result
	}

	first := true
	for _, sel := range order {
		net := decimal.Zero
		for other, b := range buckets {
			if other == sel {
				net = net.Sub(b.forProfit).Add(b.againstLoss)
			} else {
				net = net.Add(b.forLoss).Sub(b.againstProfit)
			}
		}
		b := buckets[sel]
		result.PerOutcome = append(result.PerOutcome, OutcomeLiability{
			Selection:    sel,
			ForStake:     b.forStake,
			AgainstStake: b.againstStake,
			NetIfWins:    net,
		})
		if first {
			result.WorstCase = net
			result.BestCase = net
			first = false
			continue
		}
		if net.LessThan(result.WorstCase) {
			result.WorstCase = net
		}
		if net.GreaterThan(result.BestCase) {
			result.BestCase = net
		}
	}

	return result
}
