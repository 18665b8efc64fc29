// Package cashout offers an early, discretionary settlement price before
// the official outcome is known. The calculator is read-only and reports
// unavailability as a structured result, never an error, since "not
// available" is an expected outcome. The executor performs the identical
// atomic release as settlement.
package cashout

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wagerx/distribution"
	"wagerx/helpers"
	"wagerx/ledger"
	"wagerx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWagerNotFound  = errors.New("cashout: wager not found")
	ErrNotOwner       = errors.New("cashout: wager not owned by account")
	ErrAlreadySettled = errors.New("cashout: wager already settled")
	ErrInvalidAmount  = errors.New("cashout: invalid amount")
	ErrNotCashable    = errors.New("cashout: bet family not cashable")
)

// cashable limits early settlement to the families with a live price:
// number wagers have no market to value them against before the draw.
func cashable(betFamily string) bool {
	return betFamily == models.FamilyOutcome || betFamily == models.FamilyFancy
}

// Quote is the calculator's answer. Available=false carries a reason
// instead of an amount.
type Quote struct {
	Available bool            `json:"available"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

// Probability clamp for the fancy estimate: the linear approximation is
// never trusted past this band.
var (
	probFloor = decimal.NewFromFloat(0.05)
	probCeil  = decimal.NewFromFloat(0.95)
)

type Service struct {
	db   *gorm.DB
	dist *distribution.Distributor
}

func New(db *gorm.DB, dist *distribution.Distributor) *Service {
	return &Service{db: db, dist: dist}
}

func unavailable(reason string) Quote {
	return Quote{Available: false, Reason: reason}
}

// Calculate quotes a cash-out for an open wager at the current market
// price (odds for outcome bets, running value for fancy bets), after the
// house margin. accountCode must own the wager.
func (s *Service) Calculate(wagerCode, accountCode string, currentPrice, marginPct decimal.Decimal) (Quote, error) {
	var w models.Wager
	if err := s.db.Where("wager_code = ?", wagerCode).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unavailable("wager not found"), nil
		}
		return Quote{}, err
	}

	if w.AccountCode != accountCode {
		return unavailable("wager not owned by caller"), nil
	}
	if !w.Open() {
		return unavailable("wager already settled"), nil
	}
	if w.Status != models.StatusMatched {
		return unavailable("wager not matched"), nil
	}

	if !cashable(w.BetFamily) {
		return unavailable("bet family not cashable"), nil
	}

	var raw decimal.Decimal
	switch w.BetFamily {
	case models.FamilyOutcome:
		if currentPrice.LessThanOrEqual(decimal.Zero) {
			return unavailable("no current price"), nil
		}
		raw = outcomeFairValue(&w, currentPrice)
	default:
		raw = fancyFairValue(&w, currentPrice)
	}

	amount := applyMargin(raw, marginPct)
	return Quote{Available: true, Amount: amount}, nil
}

// outcomeFairValue scales the stake by how the price moved since
// placement: a backer's position gains as the price shortens
// (placement/current), a layer's inversely.
func outcomeFairValue(w *models.Wager, currentPrice decimal.Decimal) decimal.Decimal {
	if w.Side == models.SideAgainst {
		return w.Stake.Mul(currentPrice).Div(w.Price)
	}
	return w.Stake.Mul(w.Price).Div(currentPrice)
}

// fancyFairValue estimates the win probability linearly from how far the
// running value sits from the line, clamped to a safety band, then prices
// the position at expected value plus stake.
func fancyFairValue(w *models.Wager, currentValue decimal.Decimal) decimal.Decimal {
	line := w.Price
	p := decimal.NewFromFloat(0.5)
	if line.IsPositive() {
		// distance above the line, as a share of the line
		p = p.Add(currentValue.Sub(line).Div(line).Mul(decimal.NewFromFloat(0.5)))
	}
	if w.Side == models.SideAgainst {
		p = decimal.NewFromInt(1).Sub(p)
	}
	if p.LessThan(probFloor) {
		p = probFloor
	}
	if p.GreaterThan(probCeil) {
		p = probCeil
	}

	q := decimal.NewFromInt(1).Sub(p)
	ev := p.Mul(w.PotentialProfit).Sub(q.Mul(w.PotentialLoss))
	return w.Stake.Add(ev)
}

// applyMargin takes the house cut and floors at zero.
func applyMargin(raw, marginPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(marginPct.Div(helpers.Hundred))
	amount := helpers.RoundMoney(raw.Mul(factor))
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Execute settles the wager early at the accepted amount:
// profitLoss = amount - stake, the same atomic release as settlement,
// then the distribution cascade. Cash-out and settlement are mutually
// exclusive terminal transitions.
func (s *Service) Execute(wagerCode, accountCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	var newBalance decimal.Decimal
	var wagerID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w models.Wager
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("wager_code = ?", wagerCode).
			First(&w).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWagerNotFound
			}
			return err
		}
		if w.AccountCode != accountCode {
			return ErrNotOwner
		}
		if !cashable(w.BetFamily) {
			return ErrNotCashable
		}
		if !w.Open() || w.Status != models.StatusMatched {
			return ErrAlreadySettled
		}

		pl := helpers.RoundMoney(amount.Sub(w.Stake))
		now := time.Now()
		res := tx.Model(&w).
			Where("id = ? AND settled_at IS NULL", w.ID).
			Updates(map[string]any{
				"settled_at":  now,
				"profit_loss": pl,
				"result":      models.ResultCashedOut,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		remark := fmt.Sprintf("cash-out at %s", amount)
		if err := ledger.Release(tx, w.AccountCode, w.RiskAmount(), pl, &w.ID, models.EntryCashOut, remark); err != nil {
			return err
		}
		if err := distribution.Enqueue(tx, w.ID, w.AccountCode, pl, w.BetFamily); err != nil {
			return err
		}
		wagerID = w.ID

		var acct models.Account
		if err := tx.Where("account_code = ?", accountCode).First(&acct).Error; err != nil {
			return err
		}
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	log.Printf("cashout: wager %s cashed out at %s by %s", wagerCode, amount, accountCode)

	var job models.DistributionJob
	if err := s.db.Where("wager_id = ? AND status = ?", wagerID, models.JobPending).
		First(&job).Error; err == nil {
		s.dist.Process(&job)
	}
	return newBalance, nil
}
