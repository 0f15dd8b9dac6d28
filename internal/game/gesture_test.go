package game

import (
	"math"
	"testing"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

func TestDeriveGestureMoves(t *testing.T) {
	tests := []struct {
		name    string
		in      []models.GestureMove
		wantIDs []string
	}{
		{
			name:    "nil uses defaults",
			in:      nil,
			wantIDs: []string{"swipe", "circle"},
		},
		{
			name:    "single valid move uses defaults",
			in:      []models.GestureMove{{ID: "zig", Power: 10}, {ID: "  "}},
			wantIDs: []string{"swipe", "circle"},
		},
		{
			name:    "duplicates count once",
			in:      []models.GestureMove{{ID: "zig"}, {ID: "zig"}},
			wantIDs: []string{"swipe", "circle"},
		},
		{
			name:    "keeps first three",
			in:      []models.GestureMove{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
			wantIDs: []string{"a", "b", "c"},
		},
		{
			name:    "two valid kept",
			in:      []models.GestureMove{{ID: "a"}, {ID: ""}, {ID: "b"}},
			wantIDs: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveGestureMoves(tt.in)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d moves, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("move %d id = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestDeriveGestureMovesClampsPower(t *testing.T) {
	got := deriveGestureMoves([]models.GestureMove{
		{ID: "weak", Power: 1},
		{ID: "strong", Power: 400},
		{ID: "nan", Power: math.NaN()},
	})
	want := []float64{balance.GesturePowerMin, balance.GesturePowerMax, balance.GesturePowerMin}
	for i, w := range want {
		if got[i].Power != w {
			t.Errorf("%s power = %f, want %f", got[i].ID, got[i].Power, w)
		}
	}
	if got[0].Gesture != "weak" {
		t.Errorf("missing gesture name should default to id, got %q", got[0].Gesture)
	}
}
