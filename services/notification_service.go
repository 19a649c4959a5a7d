package services

import (
	"gorm.io/gorm"
)

// NotificationService computes recipient lists. Delivery itself belongs
// to the bot adapter — this service never talks to Telegram.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// ResultRecipients returns the distinct users who predicted on the match
// and have result notifications enabled. Users with no preferences row
// count as opted in.
func (s *NotificationService) ResultRecipients(matchID int64) ([]int64, error) {
	var ids []int64
	err := s.DB.Raw(`
		SELECT DISTINCT p.user_id
		FROM predictions p
		LEFT JOIN user_preferences up ON up.user_id = p.user_id
		WHERE p.match_id = ? AND (up.user_id IS NULL OR up.result_notifications = ?)`,
		matchID, true).Scan(&ids).Error
	return ids, err
}

// ReminderRecipients returns the distinct users who predicted on the
// match and have match reminders enabled.
func (s *NotificationService) ReminderRecipients(matchID int64) ([]int64, error) {
	var ids []int64
	err := s.DB.Raw(`
		SELECT DISTINCT p.user_id
		FROM predictions p
		LEFT JOIN user_preferences up ON up.user_id = p.user_id
		WHERE p.match_id = ? AND (up.user_id IS NULL OR up.match_reminders = ?)`,
		matchID, true).Scan(&ids).Error
	return ids, err
}
