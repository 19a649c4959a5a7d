package models

import (
	"time"
)

// MatchStatus is the match lifecycle state. Transitions are monotonic:
// OPEN → CLOSED → RESOLVED, and RESOLVED is terminal.
type MatchStatus string

const (
	MatchStatusOpen     MatchStatus = "OPEN"
	MatchStatusClosed   MatchStatus = "CLOSED"
	MatchStatusResolved MatchStatus = "RESOLVED"
)

// Result codes for a resolved match (also the winner-side prediction choices).
const (
	ResultTeamA = "A"
	ResultTeamB = "B"
	ResultDraw  = "DRAW"
)

// Match is a schedulable sporting event open for predictions.
type Match struct {
	MatchID int64  `gorm:"primaryKey" json:"match_id"`
	TeamA   string `gorm:"not null" json:"team_a"`
	TeamB   string `gorm:"not null" json:"team_b"`

	SportType string `gorm:"type:varchar(32);not null;default:'football';index" json:"sport_type"`

	// Advisory kickoff time; drives the auto-close job, not enforced by
	// the settlement engine itself.
	MatchTime *time.Time `gorm:"index" json:"match_time,omitempty"`

	// Chat the match was announced in; nil = global
	ChatID *int64 `gorm:"index" json:"chat_id,omitempty"`

	Status MatchStatus `gorm:"type:varchar(16);not null;default:'OPEN';index" json:"status"`

	// Set only on resolution
	Result *string `gorm:"type:varchar(8)" json:"result,omitempty"`
	ScoreA *int    `json:"score_a,omitempty"`
	ScoreB *int    `json:"score_b,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
