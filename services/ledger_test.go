package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"
)

func TestAdjustExistingUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)
	seedUser(t, db, 1, "u1", 100)

	balance, err := ledger.Adjust(1, 25)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 125 {
		t.Errorf("balance = %d, want 125", balance)
	}

	balance, err = ledger.Adjust(1, -40)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 85 {
		t.Errorf("balance = %d, want 85", balance)
	}
}

func TestAdjustUpsertsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)

	balance, err := ledger.Adjust(42, 7)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 7 {
		t.Errorf("balance = %d, want 7 (delta as starting balance)", balance)
	}
	if got := balanceOf(t, db, 42); got != 7 {
		t.Errorf("stored balance = %d, want 7", got)
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)

	if _, err := ledger.Balance(404); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestClaimDailyOncePerDay(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)
	seedUser(t, db, 1, "u1", 10)

	claimed, balance, err := ledger.ClaimDaily(1)
	if err != nil {
		t.Fatal(err)
	}
	if !claimed || balance != 12 {
		t.Fatalf("first claim = (%v, %d), want (true, 12)", claimed, balance)
	}

	claimed, balance, err = ledger.ClaimDaily(1)
	if err != nil {
		t.Fatal(err)
	}
	if claimed || balance != 12 {
		t.Errorf("second claim = (%v, %d), want (false, 12)", claimed, balance)
	}
}

func TestClaimDailyAfterPreviousDay(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)

	yesterday := time.Now().UTC().Add(-48 * time.Hour)
	user := models.User{UserID: 1, CoinBalance: 10, LastDailyClaim: &yesterday}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	claimed, balance, err := ledger.ClaimDaily(1)
	if err != nil {
		t.Fatal(err)
	}
	if !claimed || balance != 12 {
		t.Errorf("claim = (%v, %d), want (true, 12)", claimed, balance)
	}
}

func TestClaimDailyUnknownUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, 2)

	if _, _, err := ledger.ClaimDaily(404); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}
