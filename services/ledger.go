package services

import (
	"errors"
	"log"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LedgerService owns all coin balance mutations. Balances only ever move
// by additive deltas applied at the storage layer, never by a
// read-modify-write in application code.
type LedgerService struct {
	DB          *gorm.DB
	DailyReward int64
}

func NewLedgerService(db *gorm.DB, dailyReward int64) *LedgerService {
	return &LedgerService{DB: db, DailyReward: dailyReward}
}

// Adjust applies delta to a user's balance atomically and returns the new
// balance. An unknown user is upserted with the delta as its starting
// balance (reference behavior).
func (s *LedgerService) Adjust(userID int64, delta int64) (int64, error) {
	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("user_id = ?", userID).
			Update("coin_balance", gorm.Expr("coin_balance + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			user := models.User{UserID: userID, CoinBalance: delta}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			balance = delta
			return nil
		}
		return tx.Model(&models.User{}).
			Select("coin_balance").
			Where("user_id = ?", userID).
			Scan(&balance).Error
	})
	return balance, err
}

// Balance returns the current balance without mutating it.
func (s *LedgerService) Balance(userID int64) (int64, error) {
	var user models.User
	if err := s.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.CoinBalance, nil
}

// ClaimDaily credits the daily reward at most once per UTC day. The
// check-and-credit is a single conditional UPDATE so concurrent claims
// cannot both pass.
func (s *LedgerService) ClaimDaily(userID int64) (claimed bool, balance int64, err error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("user_id = ? AND (last_daily_claim IS NULL OR last_daily_claim < ?)", userID, dayStart).
			Updates(map[string]interface{}{
				"coin_balance":     gorm.Expr("coin_balance + ?", s.DailyReward),
				"last_daily_claim": now,
			})
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected > 0

		var user models.User
		if err := tx.First(&user, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		balance = user.CoinBalance
		return nil
	})
	return claimed, balance, err
}

// --- HTTP handlers ---

// GetBalance returns the authenticated user's coin balance.
func (s *LedgerService) GetBalance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	balance, err := s.Balance(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user_not_found"})
		}
		log.Printf("DB Error fetching balance for %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch balance"})
	}

	return c.JSON(fiber.Map{"user_id": userID, "coins": balance})
}

// ClaimDailyReward handles the daily coin claim for the authenticated user.
func (s *LedgerService) ClaimDailyReward(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	claimed, balance, err := s.ClaimDaily(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user_not_found"})
		}
		log.Printf("DB Error on daily claim for %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim daily reward"})
	}

	return c.JSON(fiber.Map{
		"claimed": claimed,
		"amount":  s.DailyReward,
		"coins":   balance,
	})
}

// GrantCoins lets an admin credit (or debit, with a negative amount) a user.
func (s *LedgerService) GrantCoins(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be non-zero"})
	}

	balance, err := s.Adjust(int64(userID), req.Amount)
	if err != nil {
		log.Printf("DB Error granting %d coins to %d: %v", req.Amount, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to adjust balance"})
	}

	log.Printf("💰 Admin granted %+d coins to user %d (new balance %d)", req.Amount, userID, balance)
	return c.JSON(fiber.Map{"user_id": userID, "coins": balance})
}
