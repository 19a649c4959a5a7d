package handlers

import (
	"github.com/Brownie-08/Dave.Sport-tgbot/middleware"
	"github.com/Brownie-08/Dave.Sport-tgbot/permissions"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, jwtSecret string, matchService *services.MatchService, settlementService *services.SettlementService) {
	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.SessionMiddleware(jwtSecret))

	secured.Get("/matches", matchService.ListOpenMatches)
	secured.Get("/matches/:id", matchService.GetMatch)

	// 🔒 Admin-only match management
	admin := secured.Group("/", middleware.RequireRole(permissions.RoleAdmin))
	admin.Post("/matches", matchService.CreateMatch)
	admin.Post("/matches/:id/close", matchService.CloseMatch)
	admin.Post("/matches/:id/resolve", settlementService.ResolveMatch)
	admin.Delete("/matches/:id", matchService.DeleteMatch)
}
