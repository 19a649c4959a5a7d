package workers

import (
	"testing"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserPreferences{}, &models.Match{}, &models.Prediction{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestSweepOnceAnnouncesEachMatchOnce(t *testing.T) {
	db := newTestDB(t)
	notifications := services.NewNotificationService(db)

	soon := time.Now().Add(10 * time.Minute)
	farOff := time.Now().Add(3 * time.Hour)
	upcoming := models.Match{TeamA: "Arsenal", TeamB: "Chelsea", SportType: "football", Status: models.MatchStatusOpen, MatchTime: &soon}
	distant := models.Match{TeamA: "Lyon", TeamB: "Lille", SportType: "football", Status: models.MatchStatusOpen, MatchTime: &farOff}
	if err := db.Create(&upcoming).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&distant).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Prediction{UserID: 5, MatchID: upcoming.MatchID, Choice: models.ChoiceTeamA, Status: models.PredictionPending}).Error; err != nil {
		t.Fatal(err)
	}

	var delivered []int64
	sweeper := NewReminderSweeper(db, notifications, 30*time.Minute, func(m models.Match, userIDs []int64) {
		if m.MatchID != upcoming.MatchID {
			t.Errorf("reminded match %d, want %d", m.MatchID, upcoming.MatchID)
		}
		delivered = append(delivered, userIDs...)
	})

	sent, err := sweeper.SweepOnce(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(delivered) != 1 || delivered[0] != 5 {
		t.Errorf("recipients = %v, want [5]", delivered)
	}

	// Second sweep within the window must not re-announce
	sent, err = sweeper.SweepOnce(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sent != 0 {
		t.Errorf("repeat sweep sent = %d, want 0", sent)
	}
}
