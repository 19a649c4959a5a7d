package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/Brownie-08/Dave.Sport-tgbot/permissions"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SessionMiddleware parses the Bearer session token and attaches the
// caller's identity to the request context for handlers.
func SessionMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing_token"})
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		claims := &services.SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Printf("❌ [AUTH] Invalid session token on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_token"})
		}

		// Attach to ctx for handlers
		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RequireRole gates a route on the role hierarchy. Must run after
// SessionMiddleware.
func RequireRole(required permissions.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !permissions.HasAtLeast(permissions.Role(role), required) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient_role"})
		}
		return c.Next()
	}
}
