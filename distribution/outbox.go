package distribution

import (
	"log"

	"wagerx/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxAttempts before a job is parked as failed for operator reconciliation.
const maxAttempts = 5

// Enqueue writes the outbox row for one settled wager. It must run inside
// the same transaction that settles the wager. Re-settlement after a
// number-market rollback reuses the row, resetting it to pending.
func Enqueue(tx *gorm.DB, wagerID uint, accountCode string, profitLoss decimal.Decimal, betFamily string) error {
	job := models.DistributionJob{
		WagerID:     wagerID,
		AccountCode: accountCode,
		ProfitLoss:  profitLoss,
		BetFamily:   betFamily,
		Status:      models.JobPending,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wager_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"account_code": accountCode,
			"profit_loss":  profitLoss,
			"bet_family":   betFamily,
			"status":       models.JobPending,
			"attempts":     0,
			"last_error":   "",
		}),
	}).Create(&job).Error
}

// Process runs both cascades for one job and records the result. A
// distribution failure never touches the already-committed settlement;
// the job stays pending for the next drain until attempts run out.
func (d *Distributor) Process(job *models.DistributionJob) {
	// Commission earns on the bettor's absolute P/L; partnership splits
	// the platform's perspective, so the sign flips.
	err := d.DistributeCommission(job.WagerID, job.AccountCode, job.ProfitLoss, job.BetFamily)
	if err == nil {
		err = d.DistributePartnership(job.WagerID, job.AccountCode, job.ProfitLoss.Neg(), job.BetFamily)
	}

	updates := map[string]any{"attempts": job.Attempts + 1}
	if err != nil {
		log.Printf("❌ distribution: wager=%d attempt=%d: %v", job.WagerID, job.Attempts+1, err)
		updates["last_error"] = err.Error()
		if job.Attempts+1 >= maxAttempts {
			updates["status"] = models.JobFailed
		}
	} else {
		updates["status"] = models.JobDone
		updates["last_error"] = ""
	}

	if uerr := d.db.Model(job).Updates(updates).Error; uerr != nil {
		log.Printf("❌ distribution: failed to update job %d: %v", job.ID, uerr)
	}
}

// Drain retries every pending job, oldest first.
func (d *Distributor) Drain(limit int) error {
	var jobs []models.DistributionJob
	if err := d.db.
		Where("status = ? AND attempts < ?", models.JobPending, maxAttempts).
		Order("id asc").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return err
	}

	for i := range jobs {
		d.Process(&jobs[i])
	}
	return nil
}
