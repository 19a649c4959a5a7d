package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Brownie-08/Dave.Sport-tgbot/bot"
	"github.com/Brownie-08/Dave.Sport-tgbot/config"
	"github.com/Brownie-08/Dave.Sport-tgbot/handlers"
	"github.com/Brownie-08/Dave.Sport-tgbot/models"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"
	"github.com/Brownie-08/Dave.Sport-tgbot/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		// Unique-constraint violations surface as gorm.ErrDuplicatedKey,
		// which is how duplicate predictions are detected.
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserPreferences{},
		&models.Group{},
		&models.Match{},
		&models.Prediction{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	matchService := services.NewMatchService(db)
	predictionService := services.NewPredictionService(db)
	settlementService := services.NewSettlementService(db)
	ledgerService := services.NewLedgerService(db, cfg.DailyReward)
	leaderboardService := services.NewLeaderboardService(db)
	notificationService := services.NewNotificationService(db)
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.SessionTTL)

	app := fiber.New(fiber.Config{AppName: "Dave.Sport"})
	app.Use(cors.New())

	handlers.SetupMatchRoutes(app, cfg.JWTSecret, matchService, settlementService)
	handlers.SetupWebappRoutes(app, cfg.JWTSecret, authService, predictionService, ledgerService, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matchService.StartAutoCloseScheduler()

	if cfg.BotToken != "" {
		tgBot, err := bot.New(cfg, db, matchService, predictionService, settlementService,
			ledgerService, leaderboardService, notificationService)
		if err != nil {
			log.Fatal("failed to start Telegram bot:", err)
		}
		go tgBot.Run(ctx)

		sweeper := workers.NewReminderSweeper(db, notificationService, cfg.ReminderWindow, tgBot.NotifyReminder)
		go workers.PollReminders(ctx, sweeper, cfg.ReminderWindow/3)

		log.Println("✅ Telegram bot running")
		log.Println("✅ Match reminder sweep running")
	} else {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set — running API only")
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Println("✅ Auto-close scheduler running (every minute)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
