package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MatchService owns the match lifecycle (OPEN → CLOSED → RESOLVED) up to,
// but not including, settlement.
type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// Create inserts a new match with status OPEN.
func (s *MatchService) Create(teamA, teamB string, matchTime *time.Time, sportType string, chatID *int64) (*models.Match, error) {
	teamA = strings.TrimSpace(teamA)
	teamB = strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, errors.New("team names must be non-empty")
	}
	if sportType == "" {
		sportType = "football"
	}

	match := models.Match{
		TeamA:     teamA,
		TeamB:     teamB,
		SportType: sportType,
		MatchTime: matchTime,
		ChatID:    chatID,
		Status:    models.MatchStatusOpen,
	}
	if err := s.DB.Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// Get fetches a match by id.
func (s *MatchService) Get(matchID int64) (*models.Match, error) {
	var match models.Match
	if err := s.DB.First(&match, "match_id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// ListOpen returns OPEN matches ordered by kickoff ascending, matches
// without a kickoff last. Optional sport and chat filters.
func (s *MatchService) ListOpen(sportType string, chatID *int64) ([]models.Match, error) {
	query := s.DB.Where("status = ?", models.MatchStatusOpen)
	if sportType != "" {
		query = query.Where("sport_type = ?", sportType)
	}
	if chatID != nil {
		query = query.Where("chat_id = ? OR chat_id IS NULL", *chatID)
	}

	var matches []models.Match
	err := query.
		Order("match_time IS NULL").
		Order("match_time ASC").
		Find(&matches).Error
	return matches, err
}

// Close moves an OPEN match to CLOSED. The WHERE clause makes this a
// conditional update: closing a CLOSED or RESOLVED match is a no-op, so a
// stale close can never resurrect a resolved match's status.
func (s *MatchService) Close(matchID int64) error {
	res := s.DB.Model(&models.Match{}).
		Where("match_id = ? AND status = ?", matchID, models.MatchStatusOpen).
		Update("status", models.MatchStatusClosed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "no such match" from "already closed/resolved"
		var count int64
		if err := s.DB.Model(&models.Match{}).Where("match_id = ?", matchID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrMatchNotFound
		}
	}
	return nil
}

// Delete removes a match and all of its predictions atomically.
func (s *MatchService) Delete(matchID int64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Prediction{}).Error; err != nil {
			return err
		}
		res := tx.Where("match_id = ?", matchID).Delete(&models.Match{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMatchNotFound
		}
		return nil
	})
}

// CloseExpired closes every OPEN match whose kickoff has passed and
// returns how many were closed. Called by the scheduler.
func (s *MatchService) CloseExpired(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Match{}).
		Where("status = ? AND match_time IS NOT NULL AND match_time <= ?", models.MatchStatusOpen, now).
		Update("status", models.MatchStatusClosed)
	return res.RowsAffected, res.Error
}

// --- HTTP handlers ---

// CreateMatch creates a match (Admin only).
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	var req struct {
		TeamA     string     `json:"team_a"`
		TeamB     string     `json:"team_b"`
		MatchTime *time.Time `json:"match_time"`
		SportType string     `json:"sport_type"`
		ChatID    *int64     `json:"chat_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	match, err := s.Create(req.TeamA, req.TeamB, req.MatchTime, req.SportType, req.ChatID)
	if err != nil {
		if strings.Contains(err.Error(), "non-empty") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("DB Error creating match: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create match"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"match_id": match.MatchID, "match": match})
}

// GetMatch returns one match by id.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	matchID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	match, err := s.Get(int64(matchID))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(match)
}

// ListOpenMatches returns OPEN matches, optionally filtered by sport.
func (s *MatchService) ListOpenMatches(c *fiber.Ctx) error {
	matches, err := s.ListOpen(c.Query("sport_type"), nil)
	if err != nil {
		log.Printf("DB Error listing open matches: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch matches"})
	}
	return c.JSON(matches)
}

// CloseMatch closes betting on a match (Admin only). Idempotent.
func (s *MatchService) CloseMatch(c *fiber.Ctx) error {
	matchID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	if err := s.Close(int64(matchID)); err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("DB Error closing match %d: %v", matchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to close match"})
	}
	return c.JSON(fiber.Map{"message": "Match closed"})
}

// DeleteMatch removes a match and its predictions (Admin only).
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	matchID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid match ID"})
	}

	if err := s.Delete(int64(matchID)); err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
		}
		log.Printf("DB Error deleting match %d: %v", matchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete match"})
	}
	return c.JSON(fiber.Map{"message": "Match deleted"})
}
