// Package ledger holds the atomic balance/exposure primitives every other
// engine component builds on. Each operation must run inside the caller's
// database transaction together with any co-located writes (wager status,
// outbox rows) so a crash mid-operation cannot split balance, exposure and
// wager state.
package ledger

import (
	"errors"
	"log"

	"wagerx/helpers"
	"wagerx/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockAccount loads the account row under FOR UPDATE. Every money mutation
// in a transaction goes through this first.
func LockAccount(tx *gorm.DB, accountCode string) (*models.Account, error) {
	var acct models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_code = ?", accountCode).
		First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// Reserve debits balance and credits exposure for a new wager's
// worst-case loss. Fails without side effect when available funds or the
// exposure limit cannot cover the amount.
func Reserve(tx *gorm.DB, accountCode string, amount decimal.Decimal, wagerID *uint, remark string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	amount = helpers.RoundMoney(amount)

	acct, err := LockAccount(tx, accountCode)
	if err != nil {
		return err
	}
	if !acct.IsActive {
		return ErrAccountInactive
	}
	if acct.Available().LessThan(amount) {
		return ErrInsufficientFunds
	}
	newExposure := acct.Exposure.Add(amount)
	if acct.ExposureLimit.IsPositive() && newExposure.GreaterThan(acct.ExposureLimit) {
		return ErrLimitExceeded
	}

	before := acct.Balance
	acct.Balance = helpers.RoundMoney(acct.Balance.Sub(amount))
	acct.Exposure = helpers.RoundMoney(newExposure)

	if err := tx.Model(acct).Updates(map[string]any{
		"balance":  acct.Balance,
		"exposure": acct.Exposure,
	}).Error; err != nil {
		return err
	}

	return appendEntry(tx, acct, models.EntryReserve, amount.Neg(), before, wagerID, remark)
}

// Release settles a risk reservation: balance += amount + profitLoss,
// exposure -= amount. profitLoss may be negative, down to the reserved
// amount (bettor lost the full liability), or zero (void/refund).
func Release(tx *gorm.DB, accountCode string, amount, profitLoss decimal.Decimal, wagerID *uint, entryType, remark string) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	amount = helpers.RoundMoney(amount)
	profitLoss = helpers.RoundMoney(profitLoss)

	acct, err := LockAccount(tx, accountCode)
	if err != nil {
		return err
	}

	before := acct.Balance
	delta := amount.Add(profitLoss)
	acct.Balance = helpers.RoundMoney(acct.Balance.Add(delta))
	acct.Exposure = helpers.RoundMoney(acct.Exposure.Sub(amount))
	if acct.Exposure.IsNegative() {
		acct.Exposure = decimal.Zero
	}

	if err := tx.Model(acct).Updates(map[string]any{
		"balance":  acct.Balance,
		"exposure": acct.Exposure,
	}).Error; err != nil {
		return err
	}

	log.Printf("ledger release: account=%s amount=%s pl=%s balance=%s",
		accountCode, amount, profitLoss, acct.Balance)

	return appendEntry(tx, acct, entryType, delta, before, wagerID, remark)
}

// Reverse undoes a prior Release for a rolled-back settlement: the earlier
// credit comes back out of the balance and the reserved risk returns to
// exposure.
// The balance is allowed to go negative here so a rollback always succeeds;
// the account owes the difference.
func Reverse(tx *gorm.DB, accountCode string, amount, profitLoss decimal.Decimal, wagerID *uint, remark string) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	acct, err := LockAccount(tx, accountCode)
	if err != nil {
		return err
	}

	before := acct.Balance
	delta := helpers.RoundMoney(amount.Add(profitLoss)).Neg()
	acct.Balance = helpers.RoundMoney(acct.Balance.Add(delta))
	acct.Exposure = helpers.RoundMoney(acct.Exposure.Add(amount))

	if err := tx.Model(acct).Updates(map[string]any{
		"balance":  acct.Balance,
		"exposure": acct.Exposure,
	}).Error; err != nil {
		return err
	}

	log.Printf("ledger reverse: account=%s amount=%s pl=%s balance=%s",
		accountCode, amount, profitLoss, acct.Balance)

	return appendEntry(tx, acct, models.EntryRollback, delta, before, wagerID, remark)
}

// Credit adds funds with no exposure movement (commission and partnership
// payouts). A negative amount debits, used when a partnership share goes
// against the ancestor.
func Credit(tx *gorm.DB, accountCode string, amount decimal.Decimal, wagerID *uint, entryType, remark string) error {
	amount = helpers.RoundMoney(amount)
	if amount.IsZero() {
		return nil
	}

	acct, err := LockAccount(tx, accountCode)
	if err != nil {
		return err
	}

	before := acct.Balance
	acct.Balance = helpers.RoundMoney(acct.Balance.Add(amount))

	if err := tx.Model(acct).Update("balance", acct.Balance).Error; err != nil {
		return err
	}

	return appendEntry(tx, acct, entryType, amount, before, wagerID, remark)
}

func appendEntry(tx *gorm.DB, acct *models.Account, entryType string, amount, before decimal.Decimal, wagerID *uint, remark string) error {
	return tx.Create(&models.LedgerEntry{
		AccountCode:   acct.AccountCode,
		WagerID:       wagerID,
		EntryType:     entryType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  acct.Balance,
		Remark:        remark,
		RefID:         uuid.New().String(),
	}).Error
}
