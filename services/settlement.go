package services

import (
	"errors"
	"log"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SettlementService resolves matches: it flips the match to RESOLVED,
// grades every prediction, and pays winners — all inside one transaction,
// so a failure leaves no partial state.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// SettlementResult is what a resolve call returns to its caller, who is
// responsible for announcing it.
type SettlementResult struct {
	MatchID int64   `json:"match_id"`
	Winners []int64 `json:"winners"`
	Count   int     `json:"count"`
}

// predictionWon grades a single prediction against the final outcome.
// A SCORE pick wins only on the exact scoreline; picking the right side
// with the wrong score loses.
func predictionWon(p models.Prediction, winnerCode string, scoreA, scoreB *int) bool {
	if p.Choice == winnerCode {
		return true
	}
	if p.Choice == models.ChoiceScore && scoreA != nil && scoreB != nil {
		return p.ScoreA != nil && p.ScoreB != nil &&
			*p.ScoreA == *scoreA && *p.ScoreB == *scoreB
	}
	return false
}

// Resolve settles a match with the given final outcome and credits each
// winner reward coins. winnerCode is trusted as authoritative; scores are
// stored for display and exact-score grading only.
//
// The RESOLVED flip is a conditional update claiming the match, which
// makes the whole operation idempotent: a second call returns
// ErrAlreadyResolved and pays nothing. (The legacy bot re-ran settlement
// and re-paid on repeat calls; that was a bug, not a feature.)
func (s *SettlementService) Resolve(matchID int64, winnerCode string, scoreA, scoreB *int, reward int64) (*SettlementResult, error) {
	switch winnerCode {
	case models.ResultTeamA, models.ResultTeamB, models.ResultDraw:
	default:
		return nil, ErrInvalidChoice
	}

	result := &SettlementResult{MatchID: matchID, Winners: []int64{}}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.Match{}).
			Where("match_id = ? AND status <> ?", matchID, models.MatchStatusResolved).
			Updates(map[string]interface{}{
				"status":  models.MatchStatusResolved,
				"result":  winnerCode,
				"score_a": scoreA,
				"score_b": scoreB,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Match{}).Where("match_id = ?", matchID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrMatchNotFound
			}
			return ErrAlreadyResolved
		}

		var preds []models.Prediction
		if err := tx.Where("match_id = ?", matchID).Find(&preds).Error; err != nil {
			return err
		}

		var winners, losers []int64
		for _, p := range preds {
			if predictionWon(p, winnerCode, scoreA, scoreB) {
				winners = append(winners, p.UserID)
			} else {
				losers = append(losers, p.UserID)
			}
		}

		if len(winners) > 0 {
			if err := tx.Model(&models.Prediction{}).
				Where("match_id = ? AND user_id IN ?", matchID, winners).
				Update("status", models.PredictionWon).Error; err != nil {
				return err
			}
		}
		if len(losers) > 0 {
			if err := tx.Model(&models.Prediction{}).
				Where("match_id = ? AND user_id IN ?", matchID, losers).
				Update("status", models.PredictionLost).Error; err != nil {
				return err
			}
		}

		if reward > 0 && len(winners) > 0 {
			if err := tx.Model(&models.User{}).
				Where("user_id IN ?", winners).
				Update("coin_balance", gorm.Expr("coin_balance + ?", reward)).Error; err != nil {
				return err
			}
		}

		result.Winners = append(result.Winners, winners...)
		result.Count = len(winners)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏁 Match %d resolved: %s, %d winner(s)", matchID, winnerCode, result.Count)
	return result, nil
}

// --- HTTP handler ---

// ResolveMatch settles a match (Admin only).
func (s *SettlementService) ResolveMatch(c *fiber.Ctx) error {
	matchID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	var req struct {
		WinnerCode string `json:"winner_code"`
		ScoreA     *int   `json:"score_a"`
		ScoreB     *int   `json:"score_b"`
		Reward     int64  `json:"reward"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := s.Resolve(int64(matchID), req.WinnerCode, req.ScoreA, req.ScoreB, req.Reward)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidChoice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_winner_code"})
		case errors.Is(err, ErrMatchNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match_not_found"})
		case errors.Is(err, ErrAlreadyResolved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_resolved"})
		}
		log.Printf("DB Error resolving match %d: %v", matchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve match"})
	}

	return c.JSON(fiber.Map{"winners": result.Winners, "count": result.Count})
}
