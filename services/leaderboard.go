package services

import (
	"errors"
	"log"
	"math"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LeaderboardService derives rankings from repository data on every call.
// It holds no state of its own — there is no cached rank column anywhere.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// GlobalEntry is one row of the coin leaderboard.
type GlobalEntry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
}

// GlobalPage holds one page of the coin leaderboard plus the caller's own
// rank, computed independently of the window so it is correct off-page.
type GlobalPage struct {
	Items           []GlobalEntry `json:"items"`
	TotalUsers      int64         `json:"total_users"`
	CurrentUserRank *int          `json:"current_user_rank,omitempty"`
}

// PredictionEntry is one row of the win-rate leaderboard.
type PredictionEntry struct {
	Rank     int     `json:"rank"`
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Wins     int64   `json:"wins"`
	Total    int64   `json:"total"`
	WinRate  float64 `json:"win_rate"`
}

// PredictionPage is one page of the win-rate leaderboard.
type PredictionPage struct {
	Items           []PredictionEntry `json:"items"`
	CurrentUserRank *int              `json:"current_user_rank,omitempty"`
}

// MinSettledForRanking is the sample-size floor for the win-rate board:
// fewer settled predictions than this and the user is not ranked at all.
const MinSettledForRanking = 3

// Global returns a page of users ordered by coin balance descending,
// user id ascending on ties.
func (s *LeaderboardService) Global(page, limit int, currentUserID int64) (*GlobalPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	out := &GlobalPage{Items: []GlobalEntry{}}

	if err := s.DB.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.DB.
		Order("coin_balance DESC").
		Order("user_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, err
	}

	for i, u := range users {
		out.Items = append(out.Items, GlobalEntry{
			Rank:     offset + i + 1,
			UserID:   u.UserID,
			Username: u.Username,
			Coins:    u.CoinBalance,
		})
	}

	if currentUserID != 0 {
		var me models.User
		err := s.DB.First(&me, "user_id = ?", currentUserID).Error
		switch {
		case err == nil:
			var higher int64
			if err := s.DB.Model(&models.User{}).
				Where("coin_balance > ?", me.CoinBalance).
				Count(&higher).Error; err != nil {
				return nil, err
			}
			rank := int(higher) + 1
			out.CurrentUserRank = &rank
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	return out, nil
}

// Predictions returns a page of the win-rate leaderboard, restricted to
// users with at least MinSettledForRanking settled predictions. Order:
// win rate descending, then settled total descending, then user id.
func (s *LeaderboardService) Predictions(page, limit int, currentUserID int64) (*PredictionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	out := &PredictionPage{Items: []PredictionEntry{}}

	type aggRow struct {
		UserID   int64
		Username string
		Wins     int64
		Total    int64
	}
	var rows []aggRow
	err := s.DB.Raw(`
		SELECT u.user_id, u.username,
		       SUM(CASE WHEN p.status = 'WON' THEN 1 ELSE 0 END) AS wins,
		       COUNT(*) AS total
		FROM predictions p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.status IN ('WON', 'LOST')
		GROUP BY u.user_id, u.username
		HAVING COUNT(*) >= ?
		ORDER BY (SUM(CASE WHEN p.status = 'WON' THEN 1 ELSE 0 END) * 1.0 / COUNT(*)) DESC,
		         COUNT(*) DESC,
		         u.user_id ASC
		LIMIT ? OFFSET ?`,
		MinSettledForRanking, limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, r := range rows {
		winRate := 0.0
		if r.Total > 0 {
			winRate = math.Round(float64(r.Wins)/float64(r.Total)*1000) / 10
		}
		out.Items = append(out.Items, PredictionEntry{
			Rank:     offset + i + 1,
			UserID:   r.UserID,
			Username: r.Username,
			Wins:     r.Wins,
			Total:    r.Total,
			WinRate:  winRate,
		})
	}

	if currentUserID != 0 {
		rank, err := s.predictionRank(currentUserID)
		if err != nil {
			return nil, err
		}
		out.CurrentUserRank = rank
	}

	return out, nil
}

// predictionRank returns the user's win-rate rank, or nil if the user is
// below the sample-size floor.
func (s *LeaderboardService) predictionRank(userID int64) (*int, error) {
	var me struct {
		Wins  int64
		Total int64
	}
	err := s.DB.Raw(`
		SELECT SUM(CASE WHEN status = 'WON' THEN 1 ELSE 0 END) AS wins,
		       COUNT(*) AS total
		FROM predictions
		WHERE user_id = ? AND status IN ('WON', 'LOST')`, userID).Scan(&me).Error
	if err != nil {
		return nil, err
	}
	if me.Total < MinSettledForRanking {
		return nil, nil
	}

	winRate := float64(me.Wins) / float64(me.Total)
	var higher int64
	err = s.DB.Raw(`
		SELECT COUNT(*) FROM (
			SELECT SUM(CASE WHEN p.status = 'WON' THEN 1 ELSE 0 END) AS wins,
			       COUNT(*) AS total
			FROM predictions p
			WHERE p.status IN ('WON', 'LOST')
			GROUP BY p.user_id
			HAVING COUNT(*) >= ?
		) t
		WHERE (t.wins * 1.0 / t.total) > ?
		   OR ((t.wins * 1.0 / t.total) = ? AND t.total > ?)`,
		MinSettledForRanking, winRate, winRate, me.Total).Scan(&higher).Error
	if err != nil {
		return nil, err
	}
	rank := int(higher) + 1
	return &rank, nil
}

// --- HTTP handler ---

// GetLeaderboards serves both boards: ?type=global|predictions&page=&limit=
func (s *LeaderboardService) GetLeaderboards(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	switch c.Query("type", "global") {
	case "global":
		board, err := s.Global(page, limit, userID)
		if err != nil {
			log.Printf("DB Error building global leaderboard: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build leaderboard"})
		}
		return c.JSON(board)
	case "predictions":
		board, err := s.Predictions(page, limit, userID)
		if err != nil {
			log.Printf("DB Error building prediction leaderboard: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build leaderboard"})
		}
		return c.JSON(board)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown leaderboard type"})
}
