package workers

import (
	"context"
	"log"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	"gorm.io/gorm"
)

// ReminderSweeper finds matches nearing kickoff and hands the recipient
// list to a delivery callback (the bot adapter). It only remembers which
// matches it already announced; nothing here guards correctness of the
// economy or settlement.
type ReminderSweeper struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Window        time.Duration

	// Notify delivers one reminder; nil disables delivery (dry run).
	Notify func(match models.Match, userIDs []int64)

	reminded map[int64]struct{}
}

func NewReminderSweeper(db *gorm.DB, notifications *services.NotificationService, window time.Duration, notify func(models.Match, []int64)) *ReminderSweeper {
	return &ReminderSweeper{
		DB:            db,
		Notifications: notifications,
		Window:        window,
		Notify:        notify,
		reminded:      make(map[int64]struct{}),
	}
}

// SweepOnce announces every OPEN match kicking off within the window that
// has not been announced yet, and returns how many it announced.
func (s *ReminderSweeper) SweepOnce(now time.Time) (int, error) {
	var matches []models.Match
	err := s.DB.
		Where("status = ? AND match_time IS NOT NULL AND match_time > ? AND match_time <= ?",
			models.MatchStatusOpen, now, now.Add(s.Window)).
		Find(&matches).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range matches {
		if _, done := s.reminded[m.MatchID]; done {
			continue
		}
		recipients, err := s.Notifications.ReminderRecipients(m.MatchID)
		if err != nil {
			log.Printf("❌ Reminder recipients lookup failed for match %d: %v", m.MatchID, err)
			continue
		}
		if s.Notify != nil {
			s.Notify(m, recipients)
		}
		s.reminded[m.MatchID] = struct{}{}
		sent++
	}
	return sent, nil
}

// PollReminders runs the sweep on a ticker until the context is cancelled.
func PollReminders(ctx context.Context, sweeper *ReminderSweeper, pollInterval time.Duration) {
	log.Println("Starting match reminder sweep...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Match reminder sweep stopped.")
			return
		case <-ticker.C:
			sent, err := sweeper.SweepOnce(time.Now())
			if err != nil {
				log.Printf("❌ Reminder sweep error: %v", err)
				continue
			}
			if sent > 0 {
				log.Printf("📣 Sent reminders for %d match(es)", sent)
			}
		}
	}
}
