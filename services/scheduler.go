// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartAutoCloseScheduler closes betting on matches whose kickoff has
// passed. Closing is a conditional update, so racing an explicit admin
// close is harmless.
func (s *MatchService) StartAutoCloseScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close OPEN matches past kickoff
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			closed, err := s.CloseExpired(time.Now())
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			if closed > 0 {
				log.Printf("✅ Auto-closed %d match(es) past kickoff", closed)
			}
		}),
	)
}
