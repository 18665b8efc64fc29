// Package placement commits new wagers: validate, run the risk gate,
// reserve the worst-case loss and create the wager row in one transaction. The
// bet-delay pause happens before the transaction and holds nothing.
package placement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wagerx/helpers"
	"wagerx/ledger"
	"wagerx/liability"
	"wagerx/models"
	"wagerx/risk"
	"wagerx/settlement"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidStake  = errors.New("placement: invalid stake")
	ErrInvalidPrice  = errors.New("placement: invalid price")
	ErrInvalidFamily = errors.New("placement: unknown bet family")
	ErrMarketLocked  = errors.New("placement: market locked")
	ErrNoPicks       = errors.New("placement: number wager needs picks")
)

type Service struct {
	db     *gorm.DB
	engine *risk.Engine
	liab   *liability.Calculator
}

func New(db *gorm.DB, engine *risk.Engine, liab *liability.Calculator) *Service {
	return &Service{db: db, engine: engine, liab: liab}
}

// PickRequest is one number/digit choice of a number wager.
type PickRequest struct {
	PickType string          `json:"pick_type"`
	Number   int             `json:"number"`
	SubStake decimal.Decimal `json:"sub_stake"`
}

type Request struct {
	AccountCode string          `json:"account_code"`
	EventID     string          `json:"event_id"`
	MarketID    string          `json:"market_id"`
	BetFamily   string          `json:"bet_family"`
	Selection   string          `json:"selection"`
	Side        string          `json:"side"`
	Stake       decimal.Decimal `json:"stake"`
	Price       decimal.Decimal `json:"price"`

	// Fancy wagers carry explicit risk terms set by the market's rate.
	PotentialProfit decimal.Decimal `json:"potential_profit"`
	PotentialLoss   decimal.Decimal `json:"potential_loss"`

	Picks    []PickRequest `json:"picks"`
	PlacedIP string        `json:"placed_ip"`
}

// Place validates and commits one wager. The returned wager is already
// persisted with its stake reserved.
func (s *Service) Place(req Request) (*models.Wager, error) {
	w, err := buildWager(req)
	if err != nil {
		return nil, err
	}

	gate, err := s.engine.GateWager(req.AccountCode, req.EventID, req.MarketID, w.Stake)
	if err != nil {
		return nil, err
	}
	if gate.Locked {
		return nil, fmt.Errorf("%w: %s", ErrMarketLocked, gate.Reason)
	}
	if gate.Delay > 0 {
		log.Printf("placement: delaying %s wager by %s (account=%s)", req.BetFamily, gate.Delay, req.AccountCode)
		time.Sleep(gate.Delay)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		// Hold the worst-case loss, not the stake: a lay or fancy position
		// can lose more than it stakes.
		return ledger.Reserve(tx, req.AccountCode, w.RiskAmount(), &w.ID, "wager risk reserved")
	})
	if err != nil {
		return nil, err
	}

	s.liab.Invalidate(req.EventID)
	return w, nil
}

// buildWager derives the wager's risk terms from the request. Outcome
// terms follow from the odds; fancy terms are the market's configured
// rate; number terms come from the picks (loss = total sub-stake, profit
// = best single-pick payout).
func buildWager(req Request) (*models.Wager, error) {
	if req.Stake.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidStake
	}

	w := &models.Wager{
		WagerCode:   uuid.New().String(),
		AccountCode: req.AccountCode,
		EventID:     req.EventID,
		MarketID:    req.MarketID,
		BetFamily:   req.BetFamily,
		Selection:   req.Selection,
		Side:        req.Side,
		Stake:       helpers.RoundMoney(req.Stake),
		Price:       req.Price,
		Status:      models.StatusMatched,
		PlacedIP:    req.PlacedIP,
	}
	if w.Side == "" {
		w.Side = models.SideFor
	}

	one := decimal.NewFromInt(1)
	switch req.BetFamily {
	case models.FamilyOutcome:
		if req.Price.LessThanOrEqual(one) {
			return nil, ErrInvalidPrice
		}
		winnings := helpers.RoundMoney(w.Stake.Mul(req.Price.Sub(one)))
		if w.Side == models.SideAgainst {
			w.PotentialProfit = w.Stake
			w.PotentialLoss = winnings
		} else {
			w.PotentialProfit = winnings
			w.PotentialLoss = w.Stake
		}
	case models.FamilyFancy:
		if req.PotentialProfit.LessThanOrEqual(decimal.Zero) || req.PotentialLoss.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidPrice
		}
		w.PotentialProfit = helpers.RoundMoney(req.PotentialProfit)
		w.PotentialLoss = helpers.RoundMoney(req.PotentialLoss)
	case models.FamilyNumber:
		if len(req.Picks) == 0 {
			return nil, ErrNoPicks
		}
		total := decimal.Zero
		best := decimal.Zero
		for _, p := range req.Picks {
			if p.SubStake.LessThanOrEqual(decimal.Zero) {
				return nil, ErrInvalidStake
			}
			if p.PickType != models.PickFull && p.PickType != models.PickDigit {
				return nil, ErrInvalidFamily
			}
			total = total.Add(p.SubStake)
			multiple := settlementMultiple(p.PickType)
			payout := p.SubStake.Mul(multiple.Sub(one))
			if payout.GreaterThan(best) {
				best = payout
			}
			w.Picks = append(w.Picks, models.NumberPick{
				PickType: p.PickType,
				Number:   p.Number,
				SubStake: helpers.RoundMoney(p.SubStake),
			})
		}
		if !total.Equal(req.Stake) {
			return nil, ErrInvalidStake
		}
		w.PotentialProfit = helpers.RoundMoney(best)
		w.PotentialLoss = w.Stake
	default:
		return nil, ErrInvalidFamily
	}

	return w, nil
}

// settlementMultiple mirrors the payout multiples the settler applies.
func settlementMultiple(pickType string) decimal.Decimal {
	if pickType == models.PickDigit {
		return settlement.SingleDigitMultiple
	}
	return settlement.FullNumberMultiple
}
