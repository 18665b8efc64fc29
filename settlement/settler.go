// Package settlement closes open wagers against an authoritative outcome.
// Each wager is settled in its own database transaction: status guard,
// profit/loss fix, exposure release, balance adjustment, ledger entry and
// the distribution outbox row commit together or not at all. Distribution
// itself runs after commit and must never roll a settlement back.
package settlement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wagerx/distribution"
	"wagerx/ledger"
	"wagerx/liability"
	"wagerx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWagerNotFound  = errors.New("settlement: wager not found")
	ErrAlreadySettled = errors.New("settlement: wager already settled")
	ErrNotOpen        = errors.New("settlement: wager not open")
	ErrNotSettled     = errors.New("settlement: wager not settled")
)

type Settler struct {
	db   *gorm.DB
	dist *distribution.Distributor
	liab *liability.Calculator
}

func New(db *gorm.DB, dist *distribution.Distributor, liab *liability.Calculator) *Settler {
	return &Settler{db: db, dist: dist, liab: liab}
}

// Summary reports one market settlement run.
type Summary struct {
	Settled    int             `json:"settled"`
	Voided     int             `json:"voided"`
	RolledBack int             `json:"rolled_back"`
	PlatformPL decimal.Decimal `json:"platform_pl"`
}

// SettleOutcomeMarket settles every open wager of an outcome market given
// the winning selection, or voids/ties the whole market when flagged.
func (s *Settler) SettleOutcomeMarket(eventID, marketID, winningSelection string, voidAll, tie bool) (*Summary, error) {
	wagers, err := s.openWagers(eventID, marketID, models.FamilyOutcome)
	if err != nil {
		return nil, err
	}

	sum := &Summary{PlatformPL: decimal.Zero}
	for i := range wagers {
		w := &wagers[i]
		var pl decimal.Decimal
		var result string
		if voidAll || w.Status == models.StatusUnmatched {
			pl, result = decimal.Zero, models.ResultVoid
		} else {
			pl, result = OutcomePL(w, winningSelection, tie)
		}
		if err := s.settleOne(w, pl, result, sum); err != nil {
			return sum, err
		}
	}

	s.liab.Invalidate(eventID)
	log.Printf("settlement: outcome market %s/%s settled=%d voided=%d platform_pl=%s",
		eventID, marketID, sum.Settled, sum.Voided, sum.PlatformPL)
	return sum, nil
}

// SettleFancyMarket settles a threshold market against the final value.
func (s *Settler) SettleFancyMarket(eventID, marketID string, finalValue decimal.Decimal, voidAll bool) (*Summary, error) {
	wagers, err := s.openWagers(eventID, marketID, models.FamilyFancy)
	if err != nil {
		return nil, err
	}

	sum := &Summary{PlatformPL: decimal.Zero}
	for i := range wagers {
		w := &wagers[i]
		var pl decimal.Decimal
		var result string
		if voidAll || w.Status == models.StatusUnmatched {
			pl, result = decimal.Zero, models.ResultVoid
		} else {
			pl, result = FancyPL(w, finalValue)
		}
		if err := s.settleOne(w, pl, result, sum); err != nil {
			return sum, err
		}
	}

	s.liab.Invalidate(eventID)
	log.Printf("settlement: fancy market %s/%s settled=%d voided=%d final=%s platform_pl=%s",
		eventID, marketID, sum.Settled, sum.Voided, finalValue, sum.PlatformPL)
	return sum, nil
}

// SettleNumberMarket settles a number market against the drawn result, or
// reverses a prior settlement when rollback is set. A rolled-back market
// accepts a fresh settlement with the same or a different result.
func (s *Settler) SettleNumberMarket(marketID string, result int, rollback bool) (*Summary, error) {
	if rollback {
		return s.rollbackNumberMarket(marketID)
	}

	var wagers []models.Wager
	if err := s.db.Preload("Picks").
		Where("market_id = ? AND bet_family = ? AND settled_at IS NULL AND status <> ?",
			marketID, models.FamilyNumber, models.StatusVoid).
		Find(&wagers).Error; err != nil {
		return nil, err
	}

	sum := &Summary{PlatformPL: decimal.Zero}
	for i := range wagers {
		w := &wagers[i]
		pl, won, tag := NumberPL(w, result)
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.markSettled(tx, w, pl, tag); err != nil {
				return err
			}
			for j := range w.Picks {
				if won[j] {
					if err := tx.Model(&w.Picks[j]).Update("won", true).Error; err != nil {
						return err
					}
				}
			}
			remark := fmt.Sprintf("number market %s result %d: %s", marketID, result, tag)
			if err := ledger.Release(tx, w.AccountCode, w.RiskAmount(), pl, &w.ID, models.EntryRelease, remark); err != nil {
				return err
			}
			return distribution.Enqueue(tx, w.ID, w.AccountCode, pl, w.BetFamily)
		})
		if errors.Is(err, ErrAlreadySettled) {
			continue
		}
		if err != nil {
			return sum, err
		}
		sum.Settled++
		sum.PlatformPL = sum.PlatformPL.Sub(pl)
		s.distribute(w.ID)
	}

	log.Printf("settlement: number market %s result=%d settled=%d platform_pl=%s",
		marketID, result, sum.Settled, sum.PlatformPL)
	return sum, nil
}

// rollbackNumberMarket restores every settled wager of the market to its
// exact pre-settlement state: profit/loss back to null, the prior credit
// reversed, the stake back on exposure, and a compensating ledger entry.
// This is the single place a settled state is not terminal.
func (s *Settler) rollbackNumberMarket(marketID string) (*Summary, error) {
	var wagers []models.Wager
	if err := s.db.
		Where("market_id = ? AND bet_family = ? AND settled_at IS NOT NULL AND result <> ?",
			marketID, models.FamilyNumber, models.ResultCashedOut).
		Find(&wagers).Error; err != nil {
		return nil, err
	}

	sum := &Summary{PlatformPL: decimal.Zero}
	for i := range wagers {
		w := &wagers[i]
		err := s.db.Transaction(func(tx *gorm.DB) error {
			var locked models.Wager
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&locked, w.ID).Error; err != nil {
				return err
			}
			if locked.SettledAt == nil || locked.ProfitLoss == nil {
				return ErrNotSettled
			}
			pl := *locked.ProfitLoss

			res := tx.Model(&locked).
				Where("id = ? AND settled_at IS NOT NULL", locked.ID).
				Updates(map[string]any{
					"settled_at":  nil,
					"profit_loss": nil,
					"result":      "",
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotSettled
			}
			if err := tx.Model(&models.NumberPick{}).
				Where("wager_id = ?", locked.ID).
				Update("won", false).Error; err != nil {
				return err
			}

			if err := parkOutboxRow(tx, locked.ID); err != nil {
				return err
			}

			remark := fmt.Sprintf("number market %s settlement rolled back", marketID)
			return ledger.Reverse(tx, locked.AccountCode, locked.RiskAmount(), pl, &locked.ID, remark)
		})
		if errors.Is(err, ErrNotSettled) {
			continue
		}
		if err != nil {
			return sum, err
		}
		sum.RolledBack++
	}

	log.Printf("settlement: number market %s rolled back %d wagers", marketID, sum.RolledBack)
	return sum, nil
}

// VoidWager administratively voids one open wager: stake refunded,
// exposure released, zero profit/loss.
func (s *Settler) VoidWager(wagerCode string) error {
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
		if !w.Open() {
			return ErrNotOpen
		}

		now := time.Now()
		zero := decimal.Zero
		res := tx.Model(&w).
			Where("id = ? AND settled_at IS NULL AND status <> ?", w.ID, models.StatusVoid).
			Updates(map[string]any{
				"status":      models.StatusVoid,
				"settled_at":  now,
				"profit_loss": zero,
				"result":      models.ResultVoid,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		return ledger.Release(tx, w.AccountCode, w.RiskAmount(), decimal.Zero, &w.ID, models.EntryVoid, "wager voided")
	})
	if err == nil {
		log.Printf("settlement: wager %s voided", wagerCode)
	}
	return err
}

// VoidMarket voids every open wager of a market regardless of family.
func (s *Settler) VoidMarket(eventID, marketID string) (*Summary, error) {
	var codes []string
	if err := s.db.Model(&models.Wager{}).
		Where("event_id = ? AND market_id = ? AND settled_at IS NULL AND status <> ?",
			eventID, marketID, models.StatusVoid).
		Pluck("wager_code", &codes).Error; err != nil {
		return nil, err
	}

	sum := &Summary{PlatformPL: decimal.Zero}
	for _, code := range codes {
		err := s.VoidWager(code)
		if errors.Is(err, ErrAlreadySettled) || errors.Is(err, ErrNotOpen) {
			continue
		}
		if err != nil {
			return sum, err
		}
		sum.Voided++
	}
	s.liab.Invalidate(eventID)
	return sum, nil
}

// openWagers loads the still-open wagers of one market and family.
func (s *Settler) openWagers(eventID, marketID, family string) ([]models.Wager, error) {
	var wagers []models.Wager
	err := s.db.
		Where("event_id = ? AND market_id = ? AND bet_family = ? AND settled_at IS NULL AND status <> ?",
			eventID, marketID, family, models.StatusVoid).
		Find(&wagers).Error
	return wagers, err
}

// settleOne runs the per-wager settlement transaction and then triggers
// distribution outside of it.
func (s *Settler) settleOne(w *models.Wager, pl decimal.Decimal, result string, sum *Summary) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.markSettled(tx, w, pl, result); err != nil {
			return err
		}
		remark := fmt.Sprintf("%s market %s/%s: %s", w.BetFamily, w.EventID, w.MarketID, result)
		entryType := models.EntryRelease
		if result == models.ResultVoid {
			entryType = models.EntryVoid
		}
		if err := ledger.Release(tx, w.AccountCode, w.RiskAmount(), pl, &w.ID, entryType, remark); err != nil {
			return err
		}
		if result == models.ResultVoid {
			return nil
		}
		return distribution.Enqueue(tx, w.ID, w.AccountCode, pl, w.BetFamily)
	})
	if errors.Is(err, ErrAlreadySettled) {
		// Settled concurrently; second settle is a no-op.
		return nil
	}
	if err != nil {
		return err
	}

	if result == models.ResultVoid {
		sum.Voided++
	} else {
		sum.Settled++
		sum.PlatformPL = sum.PlatformPL.Sub(pl)
		s.distribute(w.ID)
	}
	return nil
}

// markSettled fixes profit/loss under the row lock. The status check and
// the write happen inside the same transaction: the RowsAffected guard
// makes a second settle of the same wager a no-op instead of a double pay.
func (s *Settler) markSettled(tx *gorm.DB, w *models.Wager, pl decimal.Decimal, result string) error {
	var locked models.Wager
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&locked, w.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWagerNotFound
		}
		return err
	}
	if locked.SettledAt != nil {
		return ErrAlreadySettled
	}
	if locked.Status == models.StatusVoid {
		return ErrNotOpen
	}

	now := time.Now()
	updates := map[string]any{
		"settled_at":  now,
		"profit_loss": pl,
		"result":      result,
	}
	if result == models.ResultVoid {
		updates["status"] = models.StatusVoid
	}
	res := tx.Model(&locked).
		Where("id = ? AND settled_at IS NULL", locked.ID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadySettled
	}
	return nil
}

// parkOutboxRow cancels the wager's pending distribution job inside the
// rollback transaction so the drain cannot pay a cascade for a settlement
// that no longer exists. A job that already ran cannot be unpaid here;
// it is logged for operator reconciliation.
func parkOutboxRow(tx *gorm.DB, wagerID uint) error {
	var job models.DistributionJob
	err := tx.Where("wager_id = ?", wagerID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if job.Status == models.JobDone {
		log.Printf("⚠️  settlement: wager %d rolled back after distribution paid out, needs reconciliation", wagerID)
		return nil
	}
	return tx.Model(&job).Updates(map[string]any{
		"status":     models.JobCancelled,
		"last_error": "settlement rolled back",
	}).Error
}

// distribute runs the cascade for one wager right after its settlement
// committed. Failures are logged and retried by the outbox drain; they do
// not undo the settlement.
func (s *Settler) distribute(wagerID uint) {
	var job models.DistributionJob
	if err := s.db.Where("wager_id = ? AND status = ?", wagerID, models.JobPending).
		First(&job).Error; err != nil {
		return
	}
	s.dist.Process(&job)
}
