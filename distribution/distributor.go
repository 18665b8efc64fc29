// Package distribution cascades settled profit/loss up the ownership tree:
// commission independently per ancestor, partnership as a consumed pool.
// The cascade runs outside the settlement transaction; each ancestor-level
// credit is its own atomic step, so a failure partway leaves upstream
// levels paid and later ones pending. The outbox drain retries those.
package distribution

import (
	"errors"
	"fmt"
	"log"

	"wagerx/helpers"
	"wagerx/ledger"
	"wagerx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("distribution: account not found")

// maxDepth caps the upward walk alongside the visited-set cycle guard.
const maxDepth = 32

type Distributor struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Distributor {
	return &Distributor{db: db}
}

// ancestors walks parent links starting at the bettor's direct parent.
// The tree is child->parent references only; a visited set guards against
// cycles that should not exist but are not structurally prevented.
func (d *Distributor) ancestors(accountCode, betFamily string, partnership bool) ([]Level, error) {
	var acct models.Account
	if err := d.db.Where("account_code = ?", accountCode).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	visited := map[string]bool{acct.AccountCode: true}
	var levels []Level

	next := acct.ParentCode
	for depth := 0; next != nil && depth < maxDepth; depth++ {
		if visited[*next] {
			log.Printf("⚠️  distribution: ownership cycle at %s, stopping walk", *next)
			break
		}
		visited[*next] = true

		var parent models.Account
		if err := d.db.Where("account_code = ?", *next).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}

		rates := parent.CommissionRates
		if partnership {
			rates = parent.PartnershipRates
		}
		levels = append(levels, Level{
			AccountCode: parent.AccountCode,
			Rate:        models.RateFor(rates, betFamily),
		})
		next = parent.ParentCode
	}
	return levels, nil
}

// DistributeCommission pays every ancestor its independent commission on
// the wager's absolute profit/loss and records the immutable fact rows.
// Ancestors that already hold a commission record for the wager are
// skipped, so a retried cascade never pays a level twice.
func (d *Distributor) DistributeCommission(wagerID uint, accountCode string, profitLoss decimal.Decimal, betFamily string) error {
	if profitLoss.IsZero() {
		return nil
	}
	levels, err := d.ancestors(accountCode, betFamily, false)
	if err != nil {
		return err
	}

	paid, err := d.paidAccounts(&models.CommissionRecord{}, "wager_id = ?", wagerID)
	if err != nil {
		return err
	}
	amounts := PendingShares(levels, CommissionAmounts(levels, profitLoss), paid)
	for i, lv := range levels {
		if amounts[i].IsZero() {
			continue
		}
		lv := lv
		amount := amounts[i]
		err := d.db.Transaction(func(tx *gorm.DB) error {
			remark := fmt.Sprintf("commission %s%% on wager %d", lv.Rate, wagerID)
			if err := ledger.Credit(tx, lv.AccountCode, amount, &wagerID, models.EntryCommission, remark); err != nil {
				return err
			}
			return tx.Create(&models.CommissionRecord{
				AccountCode: lv.AccountCode,
				WagerID:     wagerID,
				Amount:      amount,
				Rate:        lv.Rate,
				BetFamily:   betFamily,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("commission level %s: %w", lv.AccountCode, err)
		}
	}
	return nil
}

// DistributePartnership cascades the platform-perspective profit/loss up
// the chain, each level consuming its share of the remaining pool. A
// negative pool (bettor won) debits the ancestors. The per-wager ledger
// entries double as the retry guard: a level with its partnership entry
// already written is skipped.
func (d *Distributor) DistributePartnership(wagerID uint, accountCode string, profitLoss decimal.Decimal, betFamily string) error {
	levels, err := d.ancestors(accountCode, betFamily, true)
	if err != nil {
		return err
	}

	paid, err := d.paidAccounts(&models.LedgerEntry{}, "wager_id = ? AND entry_type = ?", wagerID, models.EntryPartner)
	if err != nil {
		return err
	}
	allShares, remaining := PartnershipShares(levels, profitLoss)
	shares := PendingShares(levels, allShares, paid)
	for i, lv := range levels {
		if shares[i].IsZero() {
			continue
		}
		lv := lv
		share := shares[i]
		err := d.db.Transaction(func(tx *gorm.DB) error {
			remark := fmt.Sprintf("partnership %s%% share", lv.Rate)
			return ledger.Credit(tx, lv.AccountCode, share, &wagerID, models.EntryPartner, remark)
		})
		if err != nil {
			return fmt.Errorf("partnership level %s: %w", lv.AccountCode, err)
		}
	}

	if !remaining.IsZero() {
		log.Printf("distribution: partnership remainder %s retained by platform (bettor=%s)",
			helpers.RoundMoney(remaining), accountCode)
	}
	return nil
}

// paidAccounts collects the account codes already credited for a wager
// from the given record table.
func (d *Distributor) paidAccounts(model any, query string, args ...any) (map[string]bool, error) {
	var codes []string
	if err := d.db.Model(model).Where(query, args...).
		Pluck("account_code", &codes).Error; err != nil {
		return nil, err
	}
	paid := make(map[string]bool, len(codes))
	for _, c := range codes {
		paid[c] = true
	}
	return paid, nil
}
