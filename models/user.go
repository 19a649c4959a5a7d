package models

import (
	"time"
)

// User is the community member record. The primary key is the Telegram
// user id, so there is no separate external-id mapping table.
type User struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username  string `gorm:"index" json:"username"`
	FirstName string `json:"first_name,omitempty"`

	// Role within the community (see permissions package)
	Role string `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`

	// Coin economy — mutated only through additive ledger updates
	CoinBalance    int64      `gorm:"not null;default:0;index" json:"coin_balance"`
	LastDailyClaim *time.Time `json:"last_daily_claim,omitempty"`

	// Moderation
	WarningCount int `gorm:"not null;default:0" json:"warning_count"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserPreferences holds per-user notification toggles. A missing row
// means everything is opted in, so rows are only written on explicit
// changes and always carry all three flags. No column defaults: a
// default tag would make GORM drop an explicit false on insert.
type UserPreferences struct {
	UserID              int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	MatchReminders      bool  `gorm:"not null" json:"match_reminders"`
	ResultNotifications bool  `gorm:"not null" json:"result_notifications"`
	DailyReminder       bool  `gorm:"not null" json:"daily_reminder"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Group is a Telegram chat the bot is active in. SportFocus scopes
// match announcements; nil means all sports.
type Group struct {
	ChatID     int64   `gorm:"primaryKey;autoIncrement:false" json:"chat_id"`
	ChatTitle  string  `json:"chat_title"`
	ChatType   string  `gorm:"type:varchar(32)" json:"chat_type"`
	SportFocus *string `gorm:"type:varchar(32)" json:"sport_focus,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
