package models

import (
	"time"
)

// Prediction choices. A/B/DRAW pick a side; SCORE is an exact scoreline
// and requires both score components.
const (
	ChoiceTeamA = "A"
	ChoiceTeamB = "B"
	ChoiceDraw  = "DRAW"
	ChoiceScore = "SCORE"
)

// PredictionStatus starts PENDING and is set exactly once by settlement.
type PredictionStatus string

const (
	PredictionPending PredictionStatus = "PENDING"
	PredictionWon     PredictionStatus = "WON"
	PredictionLost    PredictionStatus = "LOST"
)

// Prediction is one user's guess for one match. The composite unique
// index is what makes duplicate placement impossible under concurrency —
// the service treats a duplicate-key error as AlreadyPredicted instead of
// pre-checking with a racy SELECT.
type Prediction struct {
	ID      int64 `gorm:"primaryKey" json:"id"`
	UserID  int64 `gorm:"not null;uniqueIndex:idx_predictions_user_match;index" json:"user_id"`
	MatchID int64 `gorm:"not null;uniqueIndex:idx_predictions_user_match;index" json:"match_id"`

	Choice string `gorm:"type:varchar(8);not null" json:"choice"`

	// Present only when Choice == SCORE
	ScoreA *int `json:"score_a,omitempty"`
	ScoreB *int `json:"score_b,omitempty"`

	Status PredictionStatus `gorm:"type:varchar(8);not null;default:'PENDING';index" json:"status"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
