package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds everything the process reads from the environment.
// Loaded once in main; no package-level lazy initialization.
type Config struct {
	DatabaseURL string
	ListenAddr  string

	BotToken string // Telegram bot token; bot adapter is skipped when empty
	OwnerID  int64  // always treated as OWNER regardless of DB role

	JWTSecret  string
	SessionTTL time.Duration

	PredictionReward int64 // flat payout per correct prediction
	DailyReward      int64 // daily claim amount

	ReminderWindow time.Duration // how far ahead the reminder sweep looks
}

func Load() Config {
	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":5300"),
		BotToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		OwnerID:          getEnvInt64("OWNER_ID", 0),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),
		PredictionReward: getEnvInt64("PREDICTION_REWARD", 10),
		DailyReward:      getEnvInt64("DAILY_REWARD", 2),
		ReminderWindow:   getEnvDuration("REMINDER_WINDOW", 30*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
