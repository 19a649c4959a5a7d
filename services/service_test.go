package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database per test. The shared
// cache keeps it alive across the pool's connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserPreferences{},
		&models.Group{},
		&models.Match{},
		&models.Prediction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id int64, username string, balance int64) {
	t.Helper()
	user := models.User{UserID: id, Username: username, CoinBalance: balance}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %d: %v", id, err)
	}
}

func seedOpenMatch(t *testing.T, db *gorm.DB) *models.Match {
	t.Helper()
	match, err := NewMatchService(db).Create("Arsenal", "Chelsea", nil, "football", nil)
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return match
}

// seedSettled inserts count settled predictions for a user, wins of them
// WON, spread across freshly created resolved matches.
func seedSettled(t *testing.T, db *gorm.DB, userID int64, wins, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		match := models.Match{TeamA: "Home", TeamB: "Away", SportType: "football", Status: models.MatchStatusResolved}
		if err := db.Create(&match).Error; err != nil {
			t.Fatalf("seed resolved match: %v", err)
		}
		status := models.PredictionLost
		if i < wins {
			status = models.PredictionWon
		}
		pred := models.Prediction{UserID: userID, MatchID: match.MatchID, Choice: models.ChoiceTeamA, Status: status}
		if err := db.Create(&pred).Error; err != nil {
			t.Fatalf("seed settled prediction: %v", err)
		}
	}
}

func intPtr(v int) *int { return &v }

func balanceOf(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	var user models.User
	if err := db.First(&user, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("fetch user %d: %v", userID, err)
	}
	return user.CoinBalance
}
