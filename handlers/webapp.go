package handlers

import (
	"github.com/Brownie-08/Dave.Sport-tgbot/middleware"
	"github.com/Brownie-08/Dave.Sport-tgbot/permissions"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	"github.com/gofiber/fiber/v2"
)

// SetupWebappRoutes wires the dashboard API: login, predictions, economy
// and leaderboards.
func SetupWebappRoutes(app *fiber.App, jwtSecret string,
	authService *services.AuthService,
	predictionService *services.PredictionService,
	ledgerService *services.LedgerService,
	leaderboardService *services.LeaderboardService,
) {
	// 🔓 Public: session issuance (login proof verified upstream)
	app.Post("/auth/telegram", authService.TelegramLogin)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.SessionMiddleware(jwtSecret))

	secured.Post("/predictions", predictionService.PlacePrediction)
	secured.Get("/users/me/predictions", predictionService.GetMyPredictions)
	secured.Get("/users/me/predictions/stats", predictionService.GetMyPredictionStats)

	secured.Get("/users/me/balance", ledgerService.GetBalance)
	secured.Post("/rewards/daily", ledgerService.ClaimDailyReward)

	secured.Get("/leaderboards", leaderboardService.GetLeaderboards)

	// 🔒 Admin-only economy adjustments
	admin := secured.Group("/admin", middleware.RequireRole(permissions.RoleAdmin))
	admin.Post("/users/:id/coins", ledgerService.GrantCoins)
}
