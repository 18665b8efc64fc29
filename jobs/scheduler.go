package jobs

import (
	"log"
	"time"

	"wagerx/distribution"
	"wagerx/risk"
)

// StartRiskScheduler runs the periodic sharp-bettor scan and the
// distribution outbox drain. The scan interval is the sharp table's
// explicit staleness window.
func StartRiskScheduler(engine *risk.Engine, dist *distribution.Distributor, scanInterval, drainInterval time.Duration) {
	tickerScan := time.NewTicker(scanInterval)
	go func() {
		for {
			<-tickerScan.C
			if _, err := engine.DetectSharpAccounts(); err != nil {
				log.Printf("❌ error in sharp scan: %v", err)
			}
		}
	}()

	tickerDrain := time.NewTicker(drainInterval)
	go func() {
		for {
			<-tickerDrain.C
			if err := dist.Drain(200); err != nil {
				log.Printf("❌ error draining distribution outbox: %v", err)
			}
		}
	}()
}
