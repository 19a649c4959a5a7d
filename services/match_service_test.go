package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"
)

func TestCreateMatchOpensForPredictions(t *testing.T) {
	db := newTestDB(t)
	matches := NewMatchService(db)

	match, err := matches.Create("Arsenal", "Chelsea", nil, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if match.Status != models.MatchStatusOpen {
		t.Errorf("status = %s, want OPEN", match.Status)
	}
	if match.SportType != "football" {
		t.Errorf("sport = %s, want football default", match.SportType)
	}

	if _, err := matches.Create("", "Chelsea", nil, "", nil); err == nil {
		t.Error("empty team name accepted")
	}
}

func TestCloseIsConditional(t *testing.T) {
	db := newTestDB(t)
	matches := NewMatchService(db)
	settlement := NewSettlementService(db)
	match := seedOpenMatch(t, db)

	if err := matches.Close(match.MatchID); err != nil {
		t.Fatal(err)
	}
	// Closing again is a no-op, not an error
	if err := matches.Close(match.MatchID); err != nil {
		t.Fatalf("repeat close: %v", err)
	}

	if _, err := settlement.Resolve(match.MatchID, "A", nil, nil, 0); err != nil {
		t.Fatal(err)
	}
	// A stale close must not resurrect a resolved match
	if err := matches.Close(match.MatchID); err != nil {
		t.Fatalf("close after resolve: %v", err)
	}
	var m models.Match
	if err := db.First(&m, "match_id = ?", match.MatchID).Error; err != nil {
		t.Fatal(err)
	}
	if m.Status != models.MatchStatusResolved {
		t.Errorf("status = %s, want RESOLVED", m.Status)
	}

	if err := matches.Close(404); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("close unknown match error = %v, want ErrMatchNotFound", err)
	}
}

func TestListOpenOrdersByKickoffNullsLast(t *testing.T) {
	db := newTestDB(t)
	matches := NewMatchService(db)

	later := time.Now().Add(4 * time.Hour)
	sooner := time.Now().Add(1 * time.Hour)

	noTime, _ := matches.Create("C1", "C2", nil, "football", nil)
	lateMatch, _ := matches.Create("B1", "B2", &later, "football", nil)
	soonMatch, _ := matches.Create("A1", "A2", &sooner, "football", nil)
	_, _ = matches.Create("D1", "D2", &sooner, "basketball", nil)

	open, err := matches.ListOpen("football", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 3 {
		t.Fatalf("open football matches = %d, want 3", len(open))
	}
	wantOrder := []int64{soonMatch.MatchID, lateMatch.MatchID, noTime.MatchID}
	for i, want := range wantOrder {
		if open[i].MatchID != want {
			t.Fatalf("order[%d] = %d, want %d (got %+v)", i, open[i].MatchID, want, open)
		}
	}
}

func TestDeleteCascadesPredictions(t *testing.T) {
	db := newTestDB(t)
	matches := NewMatchService(db)
	preds := NewPredictionService(db)

	doomed := seedOpenMatch(t, db)
	keeper, _ := matches.Create("Lyon", "Lille", nil, "football", nil)

	if err := preds.Place(1, doomed.MatchID, "A", nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := preds.Place(2, doomed.MatchID, "B", nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := preds.Place(1, keeper.MatchID, "DRAW", nil, nil); err != nil {
		t.Fatal(err)
	}

	if err := matches.Delete(doomed.MatchID); err != nil {
		t.Fatal(err)
	}

	left, err := preds.ListForMatch(doomed.MatchID)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("deleted match still has %d predictions", len(left))
	}
	kept, err := preds.ListForMatch(keeper.MatchID)
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 {
		t.Errorf("other match's predictions affected: %d left, want 1", len(kept))
	}

	if err := matches.Delete(doomed.MatchID); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("repeat delete error = %v, want ErrMatchNotFound", err)
	}
}

func TestCloseExpired(t *testing.T) {
	db := newTestDB(t)
	matches := NewMatchService(db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expired, _ := matches.Create("P1", "P2", &past, "football", nil)
	upcoming, _ := matches.Create("F1", "F2", &future, "football", nil)
	unscheduled, _ := matches.Create("N1", "N2", nil, "football", nil)

	closed, err := matches.CloseExpired(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	for id, want := range map[int64]models.MatchStatus{
		expired.MatchID:     models.MatchStatusClosed,
		upcoming.MatchID:    models.MatchStatusOpen,
		unscheduled.MatchID: models.MatchStatusOpen,
	} {
		var m models.Match
		if err := db.First(&m, "match_id = ?", id).Error; err != nil {
			t.Fatal(err)
		}
		if m.Status != want {
			t.Errorf("match %d status = %s, want %s", id, m.Status, want)
		}
	}
}
