package bot

import (
	"testing"

	"github.com/Brownie-08/Dave.Sport-tgbot/models"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in     string
		choice string
		scoreA int
		scoreB int
		ok     bool
	}{
		{"A", models.ChoiceTeamA, 0, 0, true},
		{"b", models.ChoiceTeamB, 0, 0, true},
		{"draw", models.ChoiceDraw, 0, 0, true},
		{"2-1", models.ChoiceScore, 2, 1, true},
		{"0:0", models.ChoiceScore, 0, 0, true},
		{"x", "", 0, 0, false},
		{"2-", "", 0, 0, false},
		{"-1-2", "", 0, 0, false},
	}

	for _, tt := range tests {
		choice, sa, sb, ok := parseChoice(tt.in)
		if ok != tt.ok {
			t.Errorf("parseChoice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if choice != tt.choice {
			t.Errorf("parseChoice(%q) = %s, want %s", tt.in, choice, tt.choice)
		}
		if choice == models.ChoiceScore && (*sa != tt.scoreA || *sb != tt.scoreB) {
			t.Errorf("parseChoice(%q) scores = %d-%d, want %d-%d", tt.in, *sa, *sb, tt.scoreA, tt.scoreB)
		}
	}
}

func TestParseNewMatch(t *testing.T) {
	teamA, teamB, matchTime, err := parseNewMatch("Arsenal vs Chelsea")
	if err != nil {
		t.Fatal(err)
	}
	if teamA != "Arsenal" || teamB != "Chelsea" || matchTime != nil {
		t.Errorf("got %q vs %q at %v", teamA, teamB, matchTime)
	}

	teamA, teamB, matchTime, err = parseNewMatch("Real Madrid vs FC Barcelona 2026-08-30 20:45")
	if err != nil {
		t.Fatal(err)
	}
	if teamA != "Real Madrid" || teamB != "FC Barcelona" {
		t.Errorf("got %q vs %q", teamA, teamB)
	}
	if matchTime == nil {
		t.Fatal("kickoff time not parsed")
	}
	if matchTime.Hour() != 20 || matchTime.Minute() != 45 {
		t.Errorf("kickoff = %v, want 20:45", matchTime)
	}

	if _, _, _, err := parseNewMatch("Arsenal Chelsea"); err == nil {
		t.Error("missing vs separator accepted")
	}
	if _, _, _, err := parseNewMatch("vs Chelsea"); err == nil {
		t.Error("empty team accepted")
	}
}
