package services

import (
	"log"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthService issues dashboard session tokens. Verifying the Telegram
// login proof happens upstream; this service upserts the user and signs
// a session JWT for the web dashboard.
type AuthService struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{DB: db, Secret: secret, TTL: ttl}
}

// SessionClaims is the JWT payload carried by dashboard sessions.
type SessionClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for a user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: user.UserID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// TelegramLogin upserts the user and returns a session token.
func (s *AuthService) TelegramLogin(c *fiber.Ctx) error {
	var req struct {
		UserID    int64  `json:"user_id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	user := models.User{
		UserID:    req.UserID,
		Username:  req.Username,
		FirstName: req.FirstName,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "updated_at"}),
	}).Create(&user).Error; err != nil {
		log.Printf("DB Error upserting user %d on login: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log in"})
	}

	// Re-read to pick up the stored role/balance after the upsert
	if err := s.DB.First(&user, "user_id = ?", req.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		log.Printf("Failed to sign session token for %d: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}
