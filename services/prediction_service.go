package services

import (
	"errors"
	"log"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PredictionService handles placement and listing of predictions. Status
// mutation belongs to the settlement engine.
type PredictionService struct {
	DB *gorm.DB
}

func NewPredictionService(db *gorm.DB) *PredictionService {
	return &PredictionService{DB: db}
}

// PredictionWithMatch is one history row: the prediction joined with its match.
type PredictionWithMatch struct {
	MatchID     int64                   `json:"match_id"`
	Choice      string                  `json:"choice"`
	PredScoreA  *int                    `json:"pred_score_a,omitempty"`
	PredScoreB  *int                    `json:"pred_score_b,omitempty"`
	Status      models.PredictionStatus `json:"status"`
	TeamA       string                  `json:"team_a"`
	TeamB       string                  `json:"team_b"`
	ScoreA      *int                    `json:"score_a,omitempty"`
	ScoreB      *int                    `json:"score_b,omitempty"`
	MatchStatus models.MatchStatus      `json:"match_status"`
	SportType   string                  `json:"sport_type"`
}

func validChoice(choice string) bool {
	switch choice {
	case models.ChoiceTeamA, models.ChoiceTeamB, models.ChoiceDraw, models.ChoiceScore:
		return true
	}
	return false
}

// Place records a prediction for (userID, matchID). The match must still
// be OPEN. Duplicates are rejected by the composite unique index, so two
// near-simultaneous placements can never both succeed.
func (s *PredictionService) Place(userID, matchID int64, choice string, scoreA, scoreB *int) error {
	if !validChoice(choice) {
		return ErrInvalidChoice
	}
	if choice == models.ChoiceScore {
		if scoreA == nil || scoreB == nil {
			return ErrInvalidScore
		}
	} else {
		// Side/draw picks carry no scoreline
		scoreA, scoreB = nil, nil
	}

	var match models.Match
	if err := s.DB.First(&match, "match_id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	if match.Status != models.MatchStatusOpen {
		return ErrMatchClosed
	}

	pred := models.Prediction{
		UserID:  userID,
		MatchID: matchID,
		Choice:  choice,
		ScoreA:  scoreA,
		ScoreB:  scoreB,
		Status:  models.PredictionPending,
	}
	if err := s.DB.Create(&pred).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyPredicted
		}
		return err
	}
	return nil
}

// ListForMatch returns every prediction for a match.
func (s *PredictionService) ListForMatch(matchID int64) ([]models.Prediction, error) {
	var preds []models.Prediction
	err := s.DB.Where("match_id = ?", matchID).Find(&preds).Error
	return preds, err
}

// ListForUser returns a user's prediction history joined with match data,
// newest match first.
func (s *PredictionService) ListForUser(userID int64, limit int) ([]PredictionWithMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []PredictionWithMatch
	err := s.DB.
		Table("predictions p").
		Select(`p.match_id, p.choice, p.score_a AS pred_score_a, p.score_b AS pred_score_b, p.status,
			m.team_a, m.team_b, m.score_a, m.score_b, m.status AS match_status, m.sport_type`).
		Joins("JOIN matches m ON m.match_id = p.match_id").
		Where("p.user_id = ?", userID).
		Order("p.match_id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Stats returns a user's settled prediction totals.
func (s *PredictionService) Stats(userID int64) (total, wins int64, err error) {
	err = s.DB.Model(&models.Prediction{}).
		Where("user_id = ? AND status IN ?", userID, []models.PredictionStatus{models.PredictionWon, models.PredictionLost}).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = s.DB.Model(&models.Prediction{}).
		Where("user_id = ? AND status = ?", userID, models.PredictionWon).
		Count(&wins).Error
	return total, wins, err
}

// --- HTTP handlers ---

// PlacePrediction places a prediction for the authenticated user.
func (s *PredictionService) PlacePrediction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	var req struct {
		MatchID int64  `json:"match_id"`
		Choice  string `json:"choice"`
		ScoreA  *int   `json:"score_a"`
		ScoreB  *int   `json:"score_b"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.Place(userID, req.MatchID, req.Choice, req.ScoreA, req.ScoreB); err != nil {
		switch {
		case errors.Is(err, ErrInvalidChoice), errors.Is(err, ErrInvalidScore):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrMatchNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match_not_found"})
		case errors.Is(err, ErrMatchClosed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "match_closed"})
		case errors.Is(err, ErrAlreadyPredicted):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already_predicted"})
		}
		log.Printf("DB Error placing prediction (user %d, match %d): %v", userID, req.MatchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to place prediction"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetMyPredictions returns the authenticated user's prediction history.
func (s *PredictionService) GetMyPredictions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	limit := c.QueryInt("limit", 10)

	rows, err := s.ListForUser(userID, limit)
	if err != nil {
		log.Printf("DB Error fetching predictions for %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch predictions"})
	}
	return c.JSON(rows)
}

// GetMyPredictionStats returns settled totals and win rate.
func (s *PredictionService) GetMyPredictionStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	total, wins, err := s.Stats(userID)
	if err != nil {
		log.Printf("DB Error fetching prediction stats for %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}

	winRate := 0.0
	if total > 0 {
		winRate = float64(wins) / float64(total) * 100
	}
	return c.JSON(fiber.Map{
		"total":    total,
		"wins":     wins,
		"losses":   total - wins,
		"win_rate": winRate,
	})
}
